package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nstehr/neuroclick/model"
	"github.com/nstehr/neuroclick/rules"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.view

	var b strings.Builder
	b.WriteString(titleStyle.Render("NeuroClick"))
	b.WriteString("  ")
	if v.Active {
		b.WriteString(activeStyle.Render("● automation running"))
	} else {
		b.WriteString(pausedStyle.Render("‖ automation paused"))
	}
	b.WriteString("\n")

	b.WriteString(panelStyle.Render(renderStats(v)))
	b.WriteString("\n")

	if m.form != nil {
		b.WriteString(panelStyle.Render("New rule\n\n" + m.form.View()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(renderActions(v))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(renderRules(v.Rules)))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(renderHistory(v)))
	b.WriteString("\n")

	if m.status.err != nil {
		b.WriteString(errorStyle.Render(m.status.err.Error()))
	} else if m.status.text != "" {
		b.WriteString(statusStyle.Render(m.status.text))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderStats(v model.View) string {
	rows := [][2]string{
		{"Clicks", humanize.Comma(v.Clicks)},
		{"Data Points", humanize.Comma(v.DataPoints)},
		{"Efficiency", "x" + strconv.FormatFloat(v.Efficiency, 'f', -1, 64)},
		{"Interval", strconv.Itoa(v.AutoClickRate) + "ms"},
		{"Upgrades", strconv.Itoa(v.UpgradeLevel)},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-12s", r[0]))+valueStyle.Render(r[1]))
	}
	return strings.Join(lines, "\n")
}

func renderActions(v model.View) string {
	items := []string{
		affordable(v.CanTrain, fmt.Sprintf("[t] train (%d dp)", rules.TrainCost)),
		affordable(v.CanUpgrade, fmt.Sprintf("[u] upgrade (%s clicks)", humanize.Comma(v.UpgradeCost))),
		affordable(v.CanBoost, fmt.Sprintf("[b] boost (%d dp)", rules.BoostCost)),
	}
	return strings.Join(items, "   ")
}

func affordable(ok bool, s string) string {
	if ok {
		return enabledStyle.Render(s)
	}
	return disabledStyle.Render(s)
}

func renderRules(rs []model.Rule) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Rules"))
	if len(rs) == 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("no rules defined"))
		return b.String()
	}
	for i, r := range rs {
		fmt.Fprintf(&b, "\n%2d. %s", i+1, describeRule(r))
	}
	return b.String()
}

func describeRule(r model.Rule) string {
	return fmt.Sprintf("%s %s %s → %s",
		r.Field, r.Operator, strconv.FormatFloat(r.Threshold, 'f', -1, 64), r.Action)
}

func renderHistory(v model.View) string {
	header := fmt.Sprintf("History  last %d samples, max %s", len(v.History), humanize.Comma(v.HistoryMax))
	if len(v.History) == 0 {
		return titleStyle.Render("History") + "\n" + labelStyle.Render("start automation to record clicks")
	}
	return titleStyle.Render(header) + "\n" + sparkStyle.Render(sparkline(v.History, v.HistoryMax))
}

// sparkline scales each sample against peak, one rune per sample.
func sparkline(samples []model.Sample, peak int64) string {
	out := make([]rune, len(samples))
	top := len(sparkLevels) - 1
	for i, s := range samples {
		idx := 0
		if peak > 0 && s.Clicks > 0 {
			idx = int(float64(s.Clicks) / float64(peak) * float64(top))
			idx = min(idx, top)
		}
		out[i] = sparkLevels[idx]
	}
	return string(out)
}
