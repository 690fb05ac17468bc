package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/lingua/internal/dispatch"
	"github.com/nadzzz/lingua/internal/message"
)

func newSpeakCmd(gf *globalFlags) *cobra.Command {
	var lang, out string
	cmd := &cobra.Command{
		Use:     "speak [flags] TEXT...",
		Short:   "Synthesize speech and write it to an MP3 file",
		Example: `  lingua speak --lang es --out cafe.mp3 "Un café, por favor"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeak(cmd, gf, lang, out, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "ISO-639-1 language code used to pick the voice")
	cmd.Flags().StringVarP(&out, "out", "o", "speech.mp3", "output file (- for stdout)")
	cmd.Flags().String("tts-backend", "openai", "speech backend: openai or elevenlabs")
	return cmd
}

func runSpeak(cmd *cobra.Command, gf *globalFlags, lang, out, text string) error {
	cfg, err := loadConfig(cmd, gf)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTTS(); err != nil {
		return err
	}

	synth, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}
	d := dispatch.New(nil, synth, dispatchOptions(cfg))
	defer d.Close()

	res, err := d.Synthesize(cmd.Context(), &message.SpeechRequest{Text: text, Language: lang})
	if err != nil {
		return err
	}

	if out == "-" {
		_, err = cmd.OutOrStdout().Write(res.Audio)
		return err
	}
	if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes (%s, voice %s) to %s\n", len(res.Audio), res.ContentType, res.Voice, out)
	return nil
}
