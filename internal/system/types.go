package system

import "github.com/dustin/go-humanize"

// HostInfo identifies the host a process directory runs on
type HostInfo struct {
	Hostname          string  `json:"hostname"`
	OS                string  `json:"os"`
	Platform          string  `json:"platform"`
	PlatformVersion   string  `json:"platform_version"`
	KernelVersion     string  `json:"kernel_version"`
	KernelArch        string  `json:"kernel_arch"`
	Uptime            uint64  `json:"uptime"`
	UptimeHuman       string  `json:"uptime_human"`
	BootTime          uint64  `json:"boot_time"`
	Procs             uint64  `json:"procs"`
	MemoryTotal       uint64  `json:"memory_total"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

// Summary is the one-line description shown in the dashboard header
func (h *HostInfo) Summary() string {
	if h == nil || h.Hostname == "" {
		return ""
	}
	s := h.Hostname
	if h.Platform != "" {
		s += " · " + h.Platform
		if h.PlatformVersion != "" {
			s += " " + h.PlatformVersion
		}
	}
	if h.MemoryTotal > 0 {
		s += " · " + humanize.IBytes(h.MemoryTotal) + " RAM"
	}
	if h.UptimeHuman != "" {
		s += " · up " + h.UptimeHuman
	}
	return s
}
