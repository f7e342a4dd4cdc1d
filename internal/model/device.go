package model

import (
	"strings"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// DeviceProfile 设备视口配置
type DeviceProfile struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mobile bool   `json:"mobile"`
}

// 设备名称常量
const (
	DeviceDesktop = "desktop"
	DeviceLaptop  = "laptop"
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
	DeviceIPhone  = "iphone"
	DeviceAndroid = "android"
)

// deviceProfiles 固定枚举，未知设备名是校验错误而非静默回退
var deviceProfiles = map[string]DeviceProfile{
	DeviceDesktop: {Name: DeviceDesktop, Width: 1920, Height: 1080, Mobile: false},
	DeviceLaptop:  {Name: DeviceLaptop, Width: 1366, Height: 768, Mobile: false},
	DeviceTablet:  {Name: DeviceTablet, Width: 768, Height: 1024, Mobile: true},
	DeviceMobile:  {Name: DeviceMobile, Width: 375, Height: 667, Mobile: true},
	DeviceIPhone:  {Name: DeviceIPhone, Width: 414, Height: 896, Mobile: true},
	DeviceAndroid: {Name: DeviceAndroid, Width: 360, Height: 640, Mobile: true},
}

// DeviceByName 根据设备名查找视口配置
func DeviceByName(name string) (DeviceProfile, bool) {
	p, ok := deviceProfiles[strings.ToLower(name)]
	return p, ok
}

// ResolveDeviceFlag 解析设备标记
// 布尔型输入映射：真值 → mobile，假值 → desktop；
// 已知设备名按名取用；其余一律校验错误，不做静默默认
func ResolveDeviceFlag(flag string) (DeviceProfile, error) {
	v := strings.ToLower(strings.TrimSpace(flag))
	switch v {
	case "是", "true", "1", "yes":
		return deviceProfiles[DeviceMobile], nil
	case "否", "false", "0", "no", "":
		return deviceProfiles[DeviceDesktop], nil
	}
	if p, ok := deviceProfiles[v]; ok {
		return p, nil
	}
	return DeviceProfile{}, errorutil.Validation("unrecognized device flag: %q", flag)
}
