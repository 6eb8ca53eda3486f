package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptsConfig contains all prompt and heuristic configuration loaded
// from YAML
type PromptsConfig struct {
	Summary  SummaryPrompts `yaml:"summary"`
	Followup FollowupConfig `yaml:"followup"`
}

// SummaryPrompts contains the summarizer prompt templates
type SummaryPrompts struct {
	SystemPrompt   string `yaml:"system_prompt"`
	ChannelPrompt  string `yaml:"channel_prompt"`
	UnreadPrompt   string `yaml:"unread_prompt"`
	ThreadPrompt   string `yaml:"thread_prompt"`
	VIPDMPrompt    string `yaml:"vip_dm_prompt"`
	VIPChanPrompt  string `yaml:"vip_channel_prompt"`
	FollowUpPrompt string `yaml:"followup_prompt"`
}

// FollowupConfig contains the follow-up detection heuristic
type FollowupConfig struct {
	Indicators []string `yaml:"indicators"`
}

// LoadPromptsConfig loads prompts configuration from YAML file
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"./configs/prompts.yaml",
			"/etc/summarybot/prompts.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		fmt.Println("[Config] No prompts.yaml found, using defaults")
		return DefaultPromptsConfig(), nil
	}

	fmt.Printf("[Config] Loading prompts from: %s\n", loadedPath)

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	defaults := DefaultPromptsConfig()

	if c.Summary.SystemPrompt == "" {
		c.Summary.SystemPrompt = defaults.Summary.SystemPrompt
	}
	if c.Summary.ChannelPrompt == "" {
		c.Summary.ChannelPrompt = defaults.Summary.ChannelPrompt
	}
	if c.Summary.UnreadPrompt == "" {
		c.Summary.UnreadPrompt = defaults.Summary.UnreadPrompt
	}
	if c.Summary.ThreadPrompt == "" {
		c.Summary.ThreadPrompt = defaults.Summary.ThreadPrompt
	}
	if c.Summary.VIPDMPrompt == "" {
		c.Summary.VIPDMPrompt = defaults.Summary.VIPDMPrompt
	}
	if c.Summary.VIPChanPrompt == "" {
		c.Summary.VIPChanPrompt = defaults.Summary.VIPChanPrompt
	}
	if c.Summary.FollowUpPrompt == "" {
		c.Summary.FollowUpPrompt = defaults.Summary.FollowUpPrompt
	}
	if len(c.Followup.Indicators) == 0 {
		c.Followup.Indicators = defaults.Followup.Indicators
	}
}

// Render substitutes {{name}} placeholders in a prompt template.
func Render(template string, values map[string]string) string {
	out := template
	for k, v := range values {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	return &PromptsConfig{
		Summary: SummaryPrompts{
			SystemPrompt: `You are a helpful assistant that writes crisp summaries of Slack conversations.

Rules:
1. Summarize only what is in the messages, never invent details
2. Group related messages into topics with short bullet points
3. Name the people driving each topic
4. Call out decisions, action items and unresolved questions
5. Keep the whole summary under 300 words
6. Output the summary directly, no preamble`,
			ChannelPrompt: `Summarize the following messages from #{{channel}} ({{timeframe}}).

Messages:
{{messages}}`,
			UnreadPrompt: `Summarize the following unread messages from #{{channel}}. The reader has not seen any of them, so cover everything important.

Messages:
{{messages}}`,
			ThreadPrompt: `Summarize the following thread from #{{channel}}. Explain what the thread is about and how it concluded, if it did.

Messages:
{{messages}}`,
			VIPDMPrompt: `Summarize the following direct messages with {{vip}}. Focus on what {{vip}} said, asked for and promised.

Messages:
{{messages}}`,
			VIPChanPrompt: `Summarize {{vip}}'s activity in #{{channel}}: what they said, where they were mentioned, and how people responded to them.

Messages:
{{messages}}`,
			FollowUpPrompt: `A user received this summary of #{{channel}}:

{{summary}}

They now ask: {{question}}

Answer the question using only the summary above. If the summary does not contain the answer, say so and suggest requesting a wider timeframe.`,
		},
		Followup: FollowupConfig{
			Indicators: []string{
				"what", "who", "when", "where", "why", "how",
				"can you", "could you", "tell me", "explain",
				"more details", "elaborate", "expand", "?",
			},
		},
	}
}
