package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"csvdash/internal/errors"
)

// dashboardFile mirrors the optional YAML overrides. Pointer fields distinguish
// "not set" from zero values.
type dashboardFile struct {
	CleaningThreshold *float64 `yaml:"cleaning_threshold"`
	Locale            string   `yaml:"locale"`
	MeansChart        string   `yaml:"means_chart"`
	HiddenTargets     []string `yaml:"hidden_targets"`
	DemoMode          *bool    `yaml:"demo_mode"`
	Chart             struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`
}

func applyDashboardFile(d *DashboardConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	var f dashboardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parse %s", path))
	}

	if f.CleaningThreshold != nil {
		d.CleaningThreshold = *f.CleaningThreshold
	}
	if f.Locale != "" {
		d.Locale = f.Locale
	}
	if f.MeansChart != "" {
		d.MeansChart = f.MeansChart
	}
	if len(f.HiddenTargets) > 0 {
		d.HiddenTargets = append([]string(nil), f.HiddenTargets...)
	}
	if f.DemoMode != nil {
		d.DemoMode = *f.DemoMode
	}
	if f.Chart.Width > 0 {
		d.ChartWidth = f.Chart.Width
	}
	if f.Chart.Height > 0 {
		d.ChartHeight = f.Chart.Height
	}
	return nil
}
