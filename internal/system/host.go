package system

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// GetHostInfo retrieves host identification and memory totals
func GetHostInfo(ctx context.Context) (*HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	hi := &HostInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		KernelArch:      info.KernelArch,
		Uptime:          info.Uptime,
		UptimeHuman:     FormatUptime(info.Uptime),
		BootTime:        info.BootTime,
		Procs:           info.Procs,
	}

	// Memory totals are informational only
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		hi.MemoryTotal = vmem.Total
		hi.MemoryUsedPercent = vmem.UsedPercent
	}

	return hi, nil
}

// FormatUptime converts uptime seconds to human readable format
func FormatUptime(seconds uint64) string {
	duration := time.Duration(seconds) * time.Second

	days := int(duration.Hours() / 24)
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
