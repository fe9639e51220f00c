package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/smartserve-ai/smartserve/internal/logger"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSkills = "Volunteer skills"
	PromptNeeds  = "NGO needs"
)

var kindPrompt = promptui.Select{
	Label: "What does the text describe?",
	Items: []string{PromptSkills, PromptNeeds},
}

var textPrompt = promptui.Prompt{
	Label: "Text",
	Validate: func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New("text must not be empty")
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:     "analyze [text]",
	Short:   "Extract skill tags from text; asks for the text when none is given",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindStrategy,
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("type", "t", "", "skills or needs (asked interactively when text is not given)")
	analyzeCmd.Flags().String("strategy", "", "tag extraction strategy: keyword or gemini")
}

func analyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	tagging, err := buildExtractors(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("configuring tag extraction", zap.Error(err))
	}

	kindFlag, _ := cmd.Flags().GetString("type")
	text, kind, err := readInput(args, kindFlag)
	if err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	set := tagging.analyze.Extract(tags.WithMemo(ctx), text, kind)
	logger.Debug("tags extracted", zap.String("kind", string(kind)), zap.Int("count", len(set)))

	if len(set) == 0 {
		fmt.Println("no tags found")
		return
	}
	for _, tag := range set {
		fmt.Println(tag)
	}
}

// readInput takes the text from args, or asks for it together with the kind.
func readInput(args []string, kindFlag string) (string, tags.Kind, error) {
	if len(args) == 1 {
		return args[0], tags.ParseKind(kindFlag), nil
	}

	kind := tags.ParseKind(kindFlag)
	if kindFlag == "" {
		_, choice, err := kindPrompt.Run()
		if err != nil {
			return "", "", err
		}
		if choice == PromptNeeds {
			kind = tags.KindNeeds
		}
	}

	text, err := textPrompt.Run()
	if err != nil {
		return "", "", err
	}
	return text, kind, nil
}
