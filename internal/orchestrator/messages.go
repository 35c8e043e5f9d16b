package orchestrator

import "fmt"

type msgID int

const (
	msgErrorPrefix msgID = iota
	msgRefreshing
	msgDevicesFound
	msgRefreshFailed
	msgConnecting
	msgConnected
	msgConnectFailed
	msgDisconnecting
	msgDisconnectingAll
	msgDisconnected
	msgDisconnectedAll
	msgInstalling
	msgInstalled
	msgInstallFailed
	msgQuerying
	msgStateUpdated
	msgStateFailed
	msgStateDevice
	msgStateOS
	msgStateBattery
	msgUnknown
	msgValidating
	msgBridgeOK
	msgBridgeVersionFailed
	msgRestarting
	msgRestarted
	msgResolving
	msgResolved
	msgResolveFailed
	msgRunning
	msgRawDone
	msgRawFailed
)

var english = map[msgID]string{
	msgErrorPrefix:         "error: %s",
	msgRefreshing:          "refreshing device list...",
	msgDevicesFound:        "%d device(s) attached",
	msgRefreshFailed:       "could not list devices",
	msgConnecting:          "connecting to %s...",
	msgConnected:           "connected to %s",
	msgConnectFailed:       "connect to %s failed",
	msgDisconnecting:       "disconnecting %s...",
	msgDisconnectingAll:    "disconnecting all devices...",
	msgDisconnected:        "device %s disconnected",
	msgDisconnectedAll:     "all devices disconnected",
	msgInstalling:          "installing %s...",
	msgInstalled:           "package installed successfully",
	msgInstallFailed:       "package install failed",
	msgQuerying:            "reading state of %s...",
	msgStateUpdated:        "device state updated",
	msgStateFailed:         "could not read state of %s",
	msgStateDevice:         "Device: %s %s",
	msgStateOS:             "Android version: %s",
	msgStateBattery:        "Battery: %d%%",
	msgUnknown:             "unknown",
	msgValidating:          "checking bridge...",
	msgBridgeOK:            "bridge OK: %s",
	msgBridgeVersionFailed: "could not read bridge version",
	msgRestarting:          "restarting bridge server...",
	msgRestarted:           "bridge server restarted",
	msgResolving:           "looking up IP address of %s...",
	msgResolved:            "device IP (%s): %s",
	msgResolveFailed:       "could not find device IP; is the device attached with USB debugging enabled?",
	msgRunning:             "running %s...",
	msgRawDone:             "command finished",
	msgRawFailed:           "command failed",
}

var chinese = map[msgID]string{
	msgErrorPrefix:         "错误: %s",
	msgRefreshing:          "正在刷新设备列表...",
	msgDevicesFound:        "已检测到 %d 台设备",
	msgRefreshFailed:       "刷新设备列表失败",
	msgConnecting:          "正在连接到 %s...",
	msgConnected:           "已成功连接到设备 %s",
	msgConnectFailed:       "连接设备 %s 失败",
	msgDisconnecting:       "正在断开设备 %s...",
	msgDisconnectingAll:    "正在断开所有设备...",
	msgDisconnected:        "设备 %s 已断开连接",
	msgDisconnectedAll:     "所有设备已断开连接",
	msgInstalling:          "正在安装 %s...",
	msgInstalled:           "APK安装成功 (success)",
	msgInstallFailed:       "APK安装失败",
	msgQuerying:            "正在检查设备 %s 状态...",
	msgStateUpdated:        "设备状态已更新",
	msgStateFailed:         "无法读取设备 %s 状态",
	msgStateDevice:         "设备: %s %s",
	msgStateOS:             "Android版本: %s",
	msgStateBattery:        "电池电量: %d%%",
	msgUnknown:             "未知",
	msgValidating:          "正在验证ADB...",
	msgBridgeOK:            "ADB路径有效: %s",
	msgBridgeVersionFailed: "无法获取ADB版本信息",
	msgRestarting:          "正在重启ADB服务...",
	msgRestarted:           "ADB服务已重启",
	msgResolving:           "正在检查设备 %s 的IP...",
	msgResolved:            "设备IP地址 (%s): %s",
	msgResolveFailed:       "无法获取设备IP地址，请确保设备已连接并已启用USB调试",
	msgRunning:             "正在运行 %s...",
	msgRawDone:             "命令已完成",
	msgRawFailed:           "命令执行失败",
}

type messages map[msgID]string

func catalog(language string) messages {
	switch language {
	case "zh", "zh-CN", "cn":
		return chinese
	default:
		return english
	}
}

func (m messages) get(id msgID, args ...any) string {
	s, ok := m[id]
	if !ok {
		s = english[id]
	}
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}
