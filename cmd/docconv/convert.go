package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"docconv/config"
	"docconv/contracts"
	"docconv/converter"
	"docconv/files_manager"
	"docconv/office"
	"docconv/render"
	"docconv/utils"
)

// flag name -> config key
var configFlags = map[string]string{
	"renderer":      "renderer.backend",
	"wkhtmltopdf":   "renderer.wkhtmltopdf_path",
	"timeout":       "renderer.timeout",
	"word-strategy": "word.strategy",
	"office-binary": "office.binary",
	"workdir":       "workdir",
}

func newConvertCommand(configFile *string) *cobra.Command {
	var in contracts.InputFlags

	cmd := &cobra.Command{
		Use:   "convert --mode <mode> [flags] file...",
		Short: "Convert files and write the result to the output directory",
		Example: `  docconv convert --mode html page.html
  docconv convert --mode image --name album scan1.png scan2.jpg
  docconv convert --mode image_to_grayscale --option convert_to_pdf photo.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ConfigFile = *configFile
			v, err := config.NewViper(in.ConfigFile)
			if err != nil {
				return err
			}
			if err := bindConfigFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, in, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&in.Mode, "mode", "m", "", "conversion mode, see 'docconv modes'")
	flags.StringVarP(&in.BaseName, "name", "n", "", "base name of the output file (default: first input file)")
	flags.StringSliceVarP(&in.MediaTypes, "type", "t", nil, "media type per input file, or one for all (default: from extension)")
	flags.StringArrayVarP(&in.Options, "option", "o", nil, "conversion option as key or key=bool, e.g. convert_to_pdf")
	flags.StringVar(&in.OutputDir, "output", ".", "output directory")
	cmd.MarkFlagRequired("mode")

	flags.String("renderer", "", "rendering backend: "+strings.Join(render.Backends(), ", "))
	flags.String("wkhtmltopdf", "", "path to the wkhtmltopdf binary")
	flags.Duration("timeout", 0, "timeout for external renderers")
	flags.String("word-strategy", "", "word conversion strategy: paragraphs or office")
	flags.String("office-binary", "", "path to the LibreOffice soffice binary")
	flags.String("workdir", "", "directory for temporary workspaces")
	return cmd
}

func bindConfigFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range configFlags {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func runConvert(cmd *cobra.Command, cfg *config.Config, in contracts.InputFlags, files []string) error {
	mode, err := contracts.ParseMode(in.Mode)
	if err != nil {
		return err
	}
	req, err := buildRequest(mode, in, files)
	if err != nil {
		return err
	}

	renderer, err := render.New(cfg.RenderSettings())
	if err != nil {
		return err
	}
	defer func() {
		if err := render.Close(renderer); err != nil {
			logger.Warnf("closing renderer: %v", err)
		}
	}()

	workspaces, err := files_manager.NewManager(cfg.Workdir)
	if err != nil {
		return err
	}
	dispatcher, err := converter.New(converter.Options{
		Renderer:     renderer,
		Policy:       cfg.Stylesheet.Policy,
		WordStrategy: cfg.Word.Strategy,
		Office:       office.NewDriver(cfg.Office.Binary, cfg.Renderer.Timeout, workspaces),
	})
	if err != nil {
		return err
	}

	res, err := dispatcher.Dispatch(cmd.Context(), mode, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(in.OutputDir, 0o755); err != nil {
		return err
	}
	out := filepath.Join(in.OutputDir, res.FileName)
	if err := os.WriteFile(out, res.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Infof("wrote %s", res)
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func buildRequest(mode contracts.Mode, in contracts.InputFlags, files []string) (contracts.ConversionRequest, error) {
	if len(in.MediaTypes) > 1 && len(in.MediaTypes) != len(files) {
		return contracts.ConversionRequest{}, contracts.Invalid("got %d --type values for %d files", len(in.MediaTypes), len(files))
	}
	options, err := parseOptions(in.Options)
	if err != nil {
		return contracts.ConversionRequest{}, err
	}

	req := contracts.ConversionRequest{
		Mode:     mode,
		BaseName: in.BaseName,
		Options:  options,
	}
	if req.BaseName == "" {
		req.BaseName = filepath.Base(files[0])
	}

	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return contracts.ConversionRequest{}, fmt.Errorf("read %s: %w", f, err)
		}
		mediaType := utils.MediaTypeFromPath(f)
		switch len(in.MediaTypes) {
		case 0:
		case 1:
			mediaType = in.MediaTypes[0]
		default:
			mediaType = in.MediaTypes[i]
		}
		req.Payloads = append(req.Payloads, contracts.Payload{Name: filepath.Base(f), MediaType: mediaType, Data: data})
	}
	return req, nil
}

func parseOptions(values []string) (map[string]bool, error) {
	options := map[string]bool{}
	for _, v := range values {
		key, raw, found := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, contracts.Invalid("empty option in %q", v)
		}
		if !found {
			options[key] = true
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, contracts.InvalidWithCause(err, "option %s must be a boolean", key)
		}
		options[key] = b
	}
	return options, nil
}
