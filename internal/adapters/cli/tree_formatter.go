package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/pkg/utils"
)

// TreeFormatter renders a colony summary as a pin tree
type TreeFormatter struct {
	useColors bool
	useEmojis bool
	typeNames map[int64]string
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// WithTypeNames sets display names used in place of type ids
func (f *TreeFormatter) WithTypeNames(names map[int64]string) *TreeFormatter {
	f.typeNames = names
	return f
}

// FormatTree renders the colony and its pins, extractors first
func (f *TreeFormatter) FormatTree(summary *dtos.ColonySummaryDTO) string {
	if summary == nil {
		return "(empty colony)"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Colony %d (%s) @ %s\n",
		summary.ColonyID, summary.PlanetType, summary.TargetTime.Format(time.RFC3339)))

	pins := make([]dtos.PinDTO, len(summary.Pins))
	copy(pins, summary.Pins)
	sort.SliceStable(pins, func(i, j int) bool {
		if kindOrder(pins[i].Kind) != kindOrder(pins[j].Kind) {
			return kindOrder(pins[i].Kind) < kindOrder(pins[j].Kind)
		}
		return pins[i].PinID < pins[j].PinID
	})

	for i, pin := range pins {
		f.formatPin(&builder, pin, i == len(pins)-1)
	}
	return builder.String()
}

func (f *TreeFormatter) formatPin(builder *strings.Builder, pin dtos.PinDTO, isLast bool) {
	linePrefix, childPrefix := "├── ", "│   "
	if isLast {
		linePrefix, childPrefix = "└── ", "    "
	}

	detail := ""
	switch pin.Kind {
	case "EXTRACTOR":
		detail = fmt.Sprintf(" cycle %d, yield %d", pin.CycleIndex, pin.CurrentCycleYield)
		if pin.ExpiryTime != nil {
			detail += ", expires " + pin.ExpiryTime.Format(time.RFC3339)
		}
	case "FACTORY":
		detail = fmt.Sprintf(" %3.0f%%", utils.ClampFloat(pin.Progress, 0, 1)*100)
	}

	builder.WriteString(fmt.Sprintf("%s%s pin %d %s[%s]%s%s\n",
		linePrefix,
		f.statusIcon(pin.Status),
		pin.PinID,
		f.statusColor(pin.Status),
		pin.Status,
		f.colorReset(),
		detail,
	))

	for i, q := range pin.Contents {
		prefix := childPrefix + "├── "
		if i == len(pin.Contents)-1 {
			prefix = childPrefix + "└── "
		}
		builder.WriteString(fmt.Sprintf("%s%s x%d\n", prefix, f.typeName(q.TypeID), q.Quantity))
	}
}

// FormatTreeSummary creates a one-line digest of the colony
func (f *TreeFormatter) FormatTreeSummary(summary *dtos.ColonySummaryDTO) string {
	if summary == nil {
		return "No colony"
	}

	counts := map[string]int{}
	for _, pin := range summary.Pins {
		counts[pin.Kind]++
	}

	names := make([]string, 0, len(summary.FinalProducts))
	for _, fp := range summary.FinalProducts {
		names = append(names, fp.Name)
	}
	products := "none"
	if len(names) > 0 {
		products = strings.Join(names, ", ")
	}

	return fmt.Sprintf("Pins: %d (%d extractors, %d factories, %d storage), expired=%d, expiring soon=%d, final products: %s",
		len(summary.Pins), counts["EXTRACTOR"], counts["FACTORY"], counts["STORAGE"],
		summary.ExpiredExtractors, summary.ExpiringSoonExtractors, products)
}

// FormatRecipeTree renders a schematic with its inputs
func (f *TreeFormatter) FormatRecipeTree(recipe *dtos.RecipeDTO) string {
	if recipe == nil {
		return "(no schematic)"
	}

	names := recipe.TypeNames
	if names == nil {
		names = f.typeNames
	}
	name := func(id int64) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return fmt.Sprintf("type %d", id)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s x%d [%s, every %s]\n",
		name(recipe.Output.TypeID), recipe.Output.Quantity, recipe.Name,
		time.Duration(recipe.CycleTimeSeconds)*time.Second))
	for i, in := range recipe.Inputs {
		prefix := "├── "
		if i == len(recipe.Inputs)-1 {
			prefix = "└── "
		}
		builder.WriteString(fmt.Sprintf("%s%s x%d\n", prefix, name(in.TypeID), in.Quantity))
	}
	return builder.String()
}

func (f *TreeFormatter) typeName(id int64) string {
	if name, ok := f.typeNames[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("type %d", id)
}

func kindOrder(kind string) int {
	switch kind {
	case "EXTRACTOR":
		return 0
	case "FACTORY":
		return 1
	case "STORAGE":
		return 2
	default:
		return 3
	}
}

// statusIcon returns a visual indicator for pin status
func (f *TreeFormatter) statusIcon(status string) string {
	if !f.useEmojis {
		switch status {
		case "ACTIVE", "RUNNING":
			return "[✓]"
		case "EXPIRED", "STARVED", "INACTIVE":
			return "[!]"
		default:
			return "[ ]"
		}
	}

	switch status {
	case "ACTIVE", "RUNNING":
		return "✅"
	case "EXPIRED", "STARVED", "INACTIVE":
		return "⚠️"
	case "STORAGE":
		return "📦"
	default:
		return "⏳"
	}
}

// statusColor returns ANSI color code for pin status
func (f *TreeFormatter) statusColor(status string) string {
	if !f.useColors {
		return ""
	}

	switch status {
	case "ACTIVE", "RUNNING":
		return "\033[32m" // Green
	case "EXPIRED", "STARVED", "INACTIVE":
		return "\033[31m" // Red
	case "IDLE", "PENDING":
		return "\033[33m" // Yellow
	default:
		return ""
	}
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}
