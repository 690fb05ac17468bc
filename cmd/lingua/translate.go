package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/lingua/internal/dispatch"
	"github.com/nadzzz/lingua/internal/message"
)

type translateFlags struct {
	from      string
	to        string
	dialect   string
	formality string
	speaker   string
	listener  string
	model     string
}

func newTranslateCmd(gf *globalFlags) *cobra.Command {
	tf := &translateFlags{}
	cmd := &cobra.Command{
		Use:   "translate [flags] TEXT...",
		Short: "Translate text once and print the JSON result",
		Example: `  lingua translate --to Japanese --formality friend "See you tomorrow"
  lingua translate --from English --to Spanish --dialect Mexican --formality superior "Thank you"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, gf, tf, strings.Join(args, " "))
		},
	}
	f := cmd.Flags()
	f.StringVar(&tf.from, "from", "English", "source language name")
	f.StringVar(&tf.to, "to", "", "target language name (required)")
	f.StringVar(&tf.dialect, "dialect", "", "target dialect")
	f.StringVar(&tf.formality, "formality", "", "superior, stranger, friend or child (default: model chooses)")
	f.StringVar(&tf.speaker, "speaker", "", "speaker pronouns")
	f.StringVar(&tf.listener, "listener", "", "listener pronouns")
	f.StringVar(&tf.model, "model", "", "override the translator model")
	f.String("backend", "openai", "translator backend: openai or gemini")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runTranslate(cmd *cobra.Command, gf *globalFlags, tf *translateFlags, text string) error {
	cfg, err := loadConfig(cmd, gf)
	if err != nil {
		return err
	}
	if tf.model != "" {
		cfg.Translator.OpenAI.Model = tf.model
		cfg.Translator.Gemini.Model = tf.model
	}
	if err := cfg.ValidateTranslator(); err != nil {
		return err
	}

	ctx := cmd.Context()
	tr, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}
	d := dispatch.New(tr, nil, dispatchOptions(cfg))
	defer d.Close()

	res, err := d.Translate(ctx, &message.TranslationRequest{
		Text:             text,
		SourceLanguage:   tf.from,
		TargetLanguage:   tf.to,
		TargetDialect:    tf.dialect,
		SpeakerPronouns:  tf.speaker,
		ListenerPronouns: tf.listener,
		Formality:        message.Formality(tf.formality),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
