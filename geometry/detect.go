// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cache Geometry Detection
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: memorygram
// Component: Topology Discovery
//
// Description:
//   Builds a Geometry from three layers, most authoritative first:
//     1. sysfs cache descriptors (LLC size, ways, line size, SMT state)
//     2. CPUID (klauspost/cpuid) for anything sysfs did not provide
//     3. gopsutil for model name, MHz, logical count and huge pages
//
//   The nominal clock comes from the "@ x.xxGHz" suffix of the model name when present, since
//   that is the rate the invariant TSC ticks at. Otherwise CPUID's estimate, then the current MHz.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"memorygram/constants"
	"memorygram/debug"
	"memorygram/faults"

	"github.com/klauspost/cpuid/v2"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// DefaultSysfsRoot is where Detect reads cache descriptors from.
const DefaultSysfsRoot = "/sys"

// Detect discovers the geometry of the running machine.
func Detect() (Geometry, error) {
	return DetectFrom(DefaultSysfsRoot)
}

// DetectFrom discovers the geometry using sysfs rooted at root. Fields sysfs
// leaves empty are filled from CPUID and gopsutil. Only a missing LLC size is
// an error; a missing line size falls back to 64 bytes.
func DetectFrom(root string) (Geometry, error) {
	var g Geometry

	smtKnown := detectSysfs(&g, root)
	detectCPUID(&g, smtKnown)
	detectHost(&g)

	if g.LineSize == 0 {
		debug.DropMessage("GEOMETRY", "line size unknown, assuming 64 bytes")
		g.LineSize = constants.DefaultLineSize
	}
	if g.LLCSize == 0 {
		return g, fmt.Errorf("%w: could not detect last-level cache size", faults.ErrInvalidGeometry)
	}
	if g.Associativity == 0 {
		debug.DropMessage("GEOMETRY", "llc associativity unknown")
	}
	return g, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSFS LAYER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// detectSysfs picks the highest-level data or unified cache of cpu0 as the LLC.
// It reports whether sysfs stated the SMT state.
func detectSysfs(g *Geometry, root string) (smtKnown bool) {
	cacheDir := filepath.Join(root, "devices", "system", "cpu", "cpu0", "cache")
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return detectSMT(g, root)
	}

	bestLevel := -1
	bestDir := ""
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "index") {
			continue
		}
		dir := filepath.Join(cacheDir, e.Name())
		if kind, ok := readString(filepath.Join(dir, "type")); ok && kind == "Instruction" {
			continue
		}
		level, ok := readInt(filepath.Join(dir, "level"))
		if !ok {
			continue
		}
		if level > bestLevel {
			bestLevel, bestDir = level, dir
		}
	}

	if bestDir != "" {
		if s, ok := readString(filepath.Join(bestDir, "size")); ok {
			if size, ok := parseSize(s); ok {
				g.LLCSize = size
			}
		}
		if ways, ok := readInt(filepath.Join(bestDir, "ways_of_associativity")); ok {
			g.Associativity = ways
		}
		if line, ok := readInt(filepath.Join(bestDir, "coherency_line_size")); ok && line > 0 {
			g.LineSize = uint64(line)
		}
	}
	if g.LineSize == 0 {
		if line, ok := readInt(filepath.Join(cacheDir, "index0", "coherency_line_size")); ok && line > 0 {
			g.LineSize = uint64(line)
		}
	}

	return detectSMT(g, root)
}

func detectSMT(g *Geometry, root string) bool {
	active, ok := readInt(filepath.Join(root, "devices", "system", "cpu", "smt", "active"))
	if ok {
		g.Hyperthreading = active == 1
	}
	return ok
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CPUID LAYER
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// detectCPUID fills what sysfs left empty. A sysfs SMT state wins over
// CPUID, which only knows whether the core supports SMT.
func detectCPUID(g *Geometry, smtKnown bool) {
	c := &cpuid.CPU
	if g.LLCSize == 0 {
		switch {
		case c.Cache.L3 > 0:
			g.LLCSize = uint64(c.Cache.L3)
		case c.Cache.L2 > 0:
			g.LLCSize = uint64(c.Cache.L2)
		}
	}
	if g.LineSize == 0 && c.CacheLine > 0 {
		g.LineSize = uint64(c.CacheLine)
	}
	if !smtKnown && c.ThreadsPerCore > 1 {
		g.Hyperthreading = true
	}
	if g.ModelName == "" {
		g.ModelName = c.BrandName
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// HOST LAYER (gopsutil)
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func detectHost(g *Geometry) {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		g.LogicalCPUs = n
	} else if cpuid.CPU.LogicalCores > 0 {
		g.LogicalCPUs = cpuid.CPU.LogicalCores
	} else {
		g.LogicalCPUs = runtime.NumCPU()
	}

	var mhz float64
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		if infos[0].ModelName != "" {
			g.ModelName = infos[0].ModelName
		}
		mhz = infos[0].Mhz
	}

	switch {
	case nominalHz(g.ModelName) > 0:
		g.ClockHz = nominalHz(g.ModelName)
	case cpuid.CPU.Hz > 0:
		g.ClockHz = uint64(cpuid.CPU.Hz)
	case mhz > 0:
		g.ClockHz = uint64(mhz * 1e6)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		g.HugePagesTotal = int(vm.HugePagesTotal)
		g.HugePagesFree = int(vm.HugePagesFree)
		g.HugePageSize = vm.HugePageSize
	}
}

// nominalHz extracts the clock from model names such as
// "Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz". Returns 0 when absent.
func nominalHz(model string) uint64 {
	at := strings.Index(model, "@ ")
	if at < 0 {
		return 0
	}
	rest := strings.TrimSpace(model[at+2:])
	end := strings.Index(rest, "GHz")
	if end <= 0 {
		return 0
	}
	ghz, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 64)
	if err != nil || ghz <= 0 {
		return 0
	}
	return uint64(ghz * 1e9)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SYSFS PARSING HELPERS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// parseSize parses sysfs cache sizes: "8192K", "32M", "1G" or plain bytes.
func parseSize(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		mult, s = constants.KB, s[:len(s)-1]
	case 'M', 'm':
		mult, s = constants.MB, s[:len(s)-1]
	case 'G', 'g':
		mult, s = constants.MB<<10, s[:len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

func readString(path string) (string, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func readInt(path string) (int, bool) {
	s, ok := readString(path)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
