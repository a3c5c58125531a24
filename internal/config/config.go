// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the optional parstat configuration file.
//
// A configuration file is YAML. Every key is optional; missing keys
// keep their default values:
//
//	input: Informations
//	results: Results
//	plots: Plots
//	reports: EditDistanceReport
//	distinct_reports: DistinctEditDistanceReport
//	jobs: 0            # 0 means one worker per CPU
//	charts:
//	  format: jpg
//	  dpi: 300
//	  title_suffix: " characters"
//	  mpi:
//	    modalities: [OMP+MPI]
//	    ymax: 6.5
//	  cuda:
//	    modalities: [OMP+CUDA, OMP+CUDA_L1]
//	    ymax: 3
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the parstat configuration.
type Config struct {
	Input           string `yaml:"input"`
	Results         string `yaml:"results"`
	Plots           string `yaml:"plots"`
	Reports         string `yaml:"reports"`
	DistinctReports string `yaml:"distinct_reports"`
	Jobs            int    `yaml:"jobs"`
	Charts          Charts `yaml:"charts"`
}

// Charts configures the speedup charts.
type Charts struct {
	Format      string `yaml:"format"`
	DPI         int    `yaml:"dpi"`
	TitleSuffix string `yaml:"title_suffix"`
	MPI         Axis   `yaml:"mpi"`
	CUDA        Axis   `yaml:"cuda"`
}

// Axis holds the per-family chart settings.
type Axis struct {
	Modalities []string `yaml:"modalities"`
	YMax       float64  `yaml:"ymax"`
}

// Formats are the image formats charts can be saved in.
var Formats = []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tif", "tiff"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Input:           "Informations",
		Results:         "Results",
		Plots:           "Plots",
		Reports:         "EditDistanceReport",
		DistinctReports: "DistinctEditDistanceReport",
		Charts: Charts{
			Format:      "jpg",
			DPI:         300,
			TitleSuffix: " characters",
			MPI:         Axis{Modalities: []string{"OMP+MPI"}, YMax: 6.5},
			CUDA:        Axis{Modalities: []string{"OMP+CUDA", "OMP+CUDA_L1"}, YMax: 3},
		},
	}
}

// Load reads the configuration file at path over the defaults. An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return errors.Errorf("jobs must not be negative, have %d", c.Jobs)
	}
	if !validFormat(c.Charts.Format) {
		return errors.Errorf("unsupported chart format %q", c.Charts.Format)
	}
	if c.Charts.DPI <= 0 {
		return errors.Errorf("chart dpi must be positive, have %d", c.Charts.DPI)
	}
	for name, a := range map[string]Axis{"mpi": c.Charts.MPI, "cuda": c.Charts.CUDA} {
		if a.YMax <= 0 {
			return errors.Errorf("charts.%s.ymax must be positive, have %v", name, a.YMax)
		}
	}
	return nil
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}
