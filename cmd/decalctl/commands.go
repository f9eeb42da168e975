package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/httpclient"
	"decal-transfer-studio/internal/placeholder"
)

type promptFlags struct {
	lang           string
	preserveFinish bool
	avoidZones     bool
}

func (f *promptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "en", "prompt language (en|vi)")
	cmd.Flags().BoolVar(&f.preserveFinish, "preserve-finish", true, "keep helmet shape, material and reflections")
	cmd.Flags().BoolVar(&f.avoidZones, "avoid-zones", true, "keep the decal off visor and vents")
}

func (f *promptFlags) language() (decal.Language, error) {
	lang, ok := decal.ParseLanguage(f.lang)
	if !ok {
		return "", fmt.Errorf("unknown language %q", f.lang)
	}
	return lang, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "decalctl",
		Short:         "Decal prompt tools and gateway client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newProCmd(),
		newHexCmd(),
		newPlaceholderCmd(),
		newCallCmd(),
	)
	return root
}

func newEncodeCmd() *cobra.Command {
	var flags promptFlags
	cmd := &cobra.Command{
		Use:   "encode [fields.yaml]",
		Short: "Render YAML decal fields as the labeled simple prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := flags.language()
			if err != nil {
				return err
			}
			p, err := readFields(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), decal.Encode(p, lang, flags.preserveFinish, flags.avoidZones))
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [prompt.txt]",
		Short: "Parse a labeled prompt back into YAML fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), decal.Decode(string(raw)))
		},
	}
}

func newProCmd() *cobra.Command {
	var (
		flags      promptFlags
		helmetType string
	)
	cmd := &cobra.Command{
		Use:   "pro [fields.yaml]",
		Short: "Build the pro prompt for a helmet type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := flags.language()
			if err != nil {
				return err
			}
			t, ok := decal.ParseHelmetType(helmetType)
			if !ok {
				return fmt.Errorf("unknown helmet type %q", helmetType)
			}
			p, err := readFields(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), decal.BuildProPrompt(p, t, lang, flags.preserveFinish))
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&helmetType, "type", string(decal.FullFace), "helmet type (half-face|open-face|fullface|cross-mx)")
	return cmd
}

type hexReport struct {
	Codes []string          `yaml:"codes"`
	Plan  decal.PalettePlan `yaml:"plan"`
}

func newHexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hex <palette text>...",
		Short: "Extract HEX codes and show the six-slot palette plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			codes := decal.ExtractHexCodes(text)
			if codes == nil {
				codes = []string{}
			}
			return writeYAML(cmd.OutOrStdout(), hexReport{Codes: codes, Plan: decal.PlanPalette(text)})
		},
	}
}

func newPlaceholderCmd() *cobra.Command {
	var (
		helmetType string
		size       int
		output     string
	)
	cmd := &cobra.Command{
		Use:   "placeholder",
		Short: "Render the neutral helmet silhouette PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := decal.ParseHelmetType(helmetType)
			if !ok {
				return fmt.Errorf("unknown helmet type %q", helmetType)
			}
			if size < 16 || size > 4096 {
				return fmt.Errorf("size %d out of range 16..4096", size)
			}
			png, err := placeholder.Render(t, size)
			if err != nil {
				return err
			}
			if output == "" {
				output = string(t) + "_placeholder.png"
			}
			if err := os.WriteFile(output, png, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
	cmd.Flags().StringVar(&helmetType, "type", string(decal.FullFace), "helmet type")
	cmd.Flags().IntVar(&size, "size", placeholder.DefaultSize, "image size in pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <type>_placeholder.png)")
	return cmd
}

func newCallCmd() *cobra.Command {
	var (
		gatewayURL string
		imagePath  string
		prompt     string
		model      string
		output     string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <analyzeHelmet1|analyzeHelmet2|generateImage|editImage>",
		Short: "Send one action to a running gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if gatewayURL == "" {
				return errors.New("--gateway or GATEWAY_URL is required")
			}
			action := gateway.Action(args[0])

			payload, err := buildPayload(action, imagePath, prompt, model)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := gateway.NewRemoteClient(gatewayURL, httpclient.New(httpclient.Options{Timeout: timeout}))
			result, err := client.Call(ctx, action, payload)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result, output)
		},
	}
	cmd.Flags().StringVar(&gatewayURL, "gateway", os.Getenv("GATEWAY_URL"), "gateway base URL")
	cmd.Flags().StringVar(&imagePath, "image", "", "input image file")
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt text, or @file to read it from a file")
	cmd.Flags().StringVar(&model, "model", "", "edit model (editImage only)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write an image result to this file")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "request timeout")
	return cmd
}

func buildPayload(action gateway.Action, imagePath, prompt, model string) (any, error) {
	if strings.HasPrefix(prompt, "@") {
		raw, err := os.ReadFile(strings.TrimPrefix(prompt, "@"))
		if err != nil {
			return nil, fmt.Errorf("read prompt: %w", err)
		}
		prompt = string(raw)
	}

	switch action {
	case gateway.ActionAnalyzeHelmet1, gateway.ActionAnalyzeHelmet2:
		img, err := readImage(imagePath)
		if err != nil {
			return nil, err
		}
		return gateway.ImagePayload{Image: img}, nil
	case gateway.ActionGenerateImage:
		if strings.TrimSpace(prompt) == "" {
			return nil, errors.New("--prompt is required")
		}
		return gateway.GeneratePayload{Prompt: prompt}, nil
	case gateway.ActionEditImage:
		img, err := readImage(imagePath)
		if err != nil {
			return nil, err
		}
		return gateway.EditPayload{Image: img, Prompt: prompt, Model: model}, nil
	default:
		return nil, gateway.ErrInvalidAction
	}
}

func readImage(path string) (gemini.ImageInput, error) {
	if path == "" {
		return gemini.ImageInput{}, errors.New("--image is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return gemini.ImageInput{}, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return gemini.ImageInput{}, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return gemini.ImageInput{MimeType: mime, Data: base64.StdEncoding.EncodeToString(raw)}, nil
}

// writeResult saves data URL results to output and prints everything else.
func writeResult(w io.Writer, result, output string) error {
	if output == "" || !strings.HasPrefix(result, "data:") {
		_, err := fmt.Fprintln(w, result)
		return err
	}
	img, err := gemini.ParseDataURL(result, "image/png")
	if err != nil {
		return err
	}
	raw, err := img.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	_, err = fmt.Fprintln(w, output)
	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func readFields(cmd *cobra.Command, args []string) (decal.Prompt, error) {
	raw, err := readInput(cmd, args)
	if err != nil {
		return decal.Prompt{}, err
	}
	var p decal.Prompt
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return decal.Prompt{}, fmt.Errorf("parse fields: %w", err)
	}
	return p, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
