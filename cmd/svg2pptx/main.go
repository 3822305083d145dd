// Command svg2pptx is a thin CLI wrapper over convert.Convert: read an
// SVG file (or stdin), optionally apply a YAML/TOML config file, write
// the resulting PPTX. Argument parsing is deliberately out of core
// scope (spec §1); this mirrors the teacher's cmd/svg2png/main.go
// decode → process → encode shape, with log.Fatal on error, plus flag
// parsing and config-file loading the teacher's own cmd doesn't need.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/svg2pptx/svg2pptx/convert"
	"github.com/svg2pptx/svg2pptx/policy"
)

// fileConfig is the subset of convert.Config a user may express in a
// --config file; zero fields fall through to convert.Config's own
// defaults.
type fileConfig struct {
	OutputTarget   string `yaml:"output_target" toml:"output_target"`
	SlideWidthEMU  int64  `yaml:"slide_width_emu" toml:"slide_width_emu"`
	SlideHeightEMU int64  `yaml:"slide_height_emu" toml:"slide_height_emu"`
	DefaultDPI     float64 `yaml:"default_dpi" toml:"default_dpi"`
	FontMissing    string `yaml:"font_missing" toml:"font_missing"`
}

func main() {
	in := flag.String("in", "", "input SVG path (default stdin)")
	out := flag.String("out", "", "output PPTX path (default stdout)")
	configPath := flag.String("config", "", "YAML or TOML config file")
	batchFile := flag.String("batch-file", "", "file of additional argument lines to process, one conversion per line")
	flag.Parse()

	cfg := convert.Config{}
	if *configPath != "" {
		fc, err := loadFileConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = applyFileConfig(cfg, fc)
	}

	if *batchFile != "" {
		lines, err := readBatchLines(*batchFile)
		if err != nil {
			log.Fatal(err)
		}
		for _, line := range lines {
			if err := runOne(line, cfg); err != nil {
				log.Fatal(err)
			}
		}
		return
	}

	if err := convertOne(*in, *out, cfg); err != nil {
		log.Fatal(err)
	}
}

// runOne parses one batch-file line (shell-quoted "--in ... --out
// ..." tokens) via go-shellwords, the same way the teacher's corpus
// tokenizes config/batch lines, and re-dispatches through flag.
func runOne(line string, base convert.Config) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return fmt.Errorf("svg2pptx: batch line %q: %w", line, err)
	}
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	in := fs.String("in", "", "")
	out := fs.String("out", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return convertOne(*in, *out, base)
}

func readBatchLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func convertOne(inPath, outPath string, cfg convert.Config) error {
	var svgBytes []byte
	var err error
	if inPath == "" {
		svgBytes, err = readAll(os.Stdin)
	} else {
		svgBytes, err = os.ReadFile(inPath)
	}
	if err != nil {
		return err
	}

	result, err := convert.Convert(svgBytes, cfg)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "svg2pptx: warning: %s: %s\n", w.Code, w.Message)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(result.PPTXBytes)
		return err
	}
	return os.WriteFile(outPath, result.PPTXBytes, 0o644)
}

func readAll(f *os.File) ([]byte, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var fc fileConfig
	if strings.HasSuffix(path, ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	return fc, err
}

func applyFileConfig(cfg convert.Config, fc fileConfig) convert.Config {
	switch strings.ToLower(fc.OutputTarget) {
	case "speed":
		cfg.OutputTarget = policy.Speed
	case "quality":
		cfg.OutputTarget = policy.Quality
	case "compatibility":
		cfg.OutputTarget = policy.Compatibility
	case "balanced":
		cfg.OutputTarget = policy.Balanced
	}
	if fc.SlideWidthEMU > 0 {
		cfg.SlideWidthEMU = fc.SlideWidthEMU
	}
	if fc.SlideHeightEMU > 0 {
		cfg.SlideHeightEMU = fc.SlideHeightEMU
	}
	if fc.DefaultDPI > 0 {
		cfg.DefaultDPI = fc.DefaultDPI
	}
	switch strings.ToLower(fc.FontMissing) {
	case "error":
		cfg.FontMissing = convert.FontError
	case "outline":
		cfg.FontMissing = convert.FontOutline
	case "fallbackfamily":
		cfg.FontMissing = convert.FontFallbackFamily
	}
	return cfg
}
