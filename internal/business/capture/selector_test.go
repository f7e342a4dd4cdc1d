package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2265681/Project-Auto-Testing/internal/model"
	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

func TestBuildClassSelector(t *testing.T) {
	cases := []struct {
		name    string
		classes []string
		want    string
	}{
		{name: "single class", classes: []string{"banner"}, want: ".banner"},
		{name: "multiple classes joined", classes: []string{"nav", "nav-top"}, want: ".nav.nav-top"},
		{name: "escapes css metacharacters", classes: []string{"w-[100px]"}, want: `.w-\[100px\]`},
		{name: "escapes dots and colons kept literal", classes: []string{"a.b"}, want: `.a\.b`},
		{name: "blank entries dropped", classes: []string{"", " ", "card"}, want: ".card"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, BuildClassSelector(c.classes))
		})
	}
}

func TestSelectorQuery(t *testing.T) {
	q, err := selectorQuery(model.ClassListSelector([]string{"hero", "main"}, 0))
	require.NoError(t, err)
	assert.Equal(t, ".hero.main", q)

	q, err = selectorQuery(model.CSSSelector("#app > div"))
	require.NoError(t, err)
	assert.Equal(t, "#app > div", q)

	q, err = selectorQuery(model.XPathSelector("/html/body/div[1]"))
	require.NoError(t, err)
	assert.Equal(t, "/html/body/div[1]", q)

	_, err = selectorQuery(model.ClassListSelector(nil, 0))
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidation))

	_, err = selectorQuery(model.SelectorSpec{Kind: "magic"})
	require.Error(t, err)
}
