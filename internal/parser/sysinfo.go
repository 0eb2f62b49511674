package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// SystemInfo holds host and build details scraped from the log file header.
// The game writes these in roughly the first two hundred lines.
type SystemInfo struct {
	CPU            string  `json:"cpu,omitempty"`
	CPUCores       int     `json:"cpu_cores,omitempty"`
	OS             string  `json:"os,omitempty"`
	RAMTotalMB     int     `json:"ram_total,omitempty"`
	RAMAvailableMB int     `json:"ram_available,omitempty"`
	GPU            string  `json:"gpu,omitempty"`
	GPUVRAM        int     `json:"gpu_vram,omitempty"`
	DisplayMode    string  `json:"display_mode,omitempty"`
	PerformanceCPU float64 `json:"performance_cpu,omitempty"`
	PerformanceGPU float64 `json:"performance_gpu,omitempty"`
	FileVersion    string  `json:"file_version,omitempty"`
	Changelist     string  `json:"changelist,omitempty"`
	Branch         string  `json:"branch,omitempty"`
	BuildDate      string  `json:"build_date,omitempty"`
	Hostname       string  `json:"hostname,omitempty"`
}

// HeaderLineCount is how many leading lines are worth scanning for SystemInfo.
const HeaderLineCount = 200

var sysInfoPatterns = map[string]*regexp.Regexp{
	"cpu":             regexp.MustCompile(`Host CPU:\s*(.+)`),
	"cpu_cores":       regexp.MustCompile(`Logical CPU Count:\s*(\d+)`),
	"os":              regexp.MustCompile(`(Windows \d+.*?)\s+\(build`),
	"ram_total":       regexp.MustCompile(`(\d+)MB physical memory installed`),
	"ram_available":   regexp.MustCompile(`(\d+)MB available`),
	"gpu":             regexp.MustCompile(`D3D Adapter: Description:\s*(.+)`),
	"gpu_vram":        regexp.MustCompile(`DedicatedVidMem\s*=\s*(\d+)`),
	"display_mode":    regexp.MustCompile(`Current display mode is\s*(.+)`),
	"performance_cpu": regexp.MustCompile(`Performance Index:\s*([\d.]+)\s*\(CPU\)`),
	"performance_gpu": regexp.MustCompile(`Performance Index:.*?\(CPU\),\s*([\d.]+)\s*\(GPU\)`),
	"file_version":    regexp.MustCompile(`FileVersion:\s*([\d.]+)`),
	"changelist":      regexp.MustCompile(`Changelist:\s*(\d+)`),
	"branch":          regexp.MustCompile(`Branch:\s*(.+)`),
	"build_date":      regexp.MustCompile(`Built on\s*(.+)`),
	"hostname":        regexp.MustCompile(`network hostname:\s*(.+)`),
}

// ExtractSystemInfo scans log header lines for system information.
// Only the first match of each field wins; later lines never overwrite.
func ExtractSystemInfo(lines []string) *SystemInfo {
	found := make(map[string]string, len(sysInfoPatterns))

	for _, line := range lines {
		for key, p := range sysInfoPatterns {
			if _, ok := found[key]; ok {
				continue
			}
			if m := p.FindStringSubmatch(line); m != nil {
				found[key] = strings.TrimSpace(m[1])
			}
		}
	}

	info := &SystemInfo{
		CPU:         found["cpu"],
		OS:          found["os"],
		GPU:         found["gpu"],
		DisplayMode: found["display_mode"],
		FileVersion: found["file_version"],
		Changelist:  found["changelist"],
		Branch:      found["branch"],
		BuildDate:   found["build_date"],
		Hostname:    found["hostname"],
	}
	info.CPUCores, _ = strconv.Atoi(found["cpu_cores"])
	info.RAMTotalMB, _ = strconv.Atoi(found["ram_total"])
	info.RAMAvailableMB, _ = strconv.Atoi(found["ram_available"])
	info.GPUVRAM, _ = strconv.Atoi(found["gpu_vram"])
	info.PerformanceCPU, _ = strconv.ParseFloat(found["performance_cpu"], 64)
	info.PerformanceGPU, _ = strconv.ParseFloat(found["performance_gpu"], 64)
	return info
}

