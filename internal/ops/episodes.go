package ops

import (
	"github.com/FabienROFFET/Noise-Over-Silence/internal/graph"
)

// EpisodeSummary describes one episode found in the episodes directory.
type EpisodeSummary struct {
	Number    int      `json:"number"`
	Title     string   `json:"title,omitempty"`
	Languages []string `json:"languages"`
	Error     string   `json:"error,omitempty"`
}

// ListEpisodesOutput contains the result of the ListEpisodes operation.
type ListEpisodesOutput struct {
	Episodes []EpisodeSummary `json:"episodes"`
}

// ListEpisodes enumerates the available episodes. An episode that fails to
// load is still listed, with the failure in Error.
func ListEpisodes(env *Env) (*ListEpisodesOutput, error) {
	numbers, err := env.Episodes.ListAvailable()
	if err != nil {
		return nil, err
	}

	out := &ListEpisodesOutput{Episodes: make([]EpisodeSummary, 0, len(numbers))}
	for _, n := range numbers {
		langs, err := env.Episodes.Languages(n)
		if err != nil {
			return nil, err
		}
		summary := EpisodeSummary{Number: n, Languages: langs}
		if ep, err := env.Episodes.Load(n, env.Config.Language); err != nil {
			summary.Error = err.Error()
		} else {
			summary.Title = ep.Title
		}
		out.Episodes = append(out.Episodes, summary)
	}
	return out, nil
}

// ValidateInput contains parameters for the Validate operation.
type ValidateInput struct {
	Episode  int
	Language string // default: config language

	// Reload drops cached episodes first so edits on disk are seen.
	Reload bool
}

// ValidateOutput contains the result of the Validate operation.
type ValidateOutput struct {
	Episode     int    `json:"episode"`
	Title       string `json:"title,omitempty"`
	Language    string `json:"language"`
	Events      int    `json:"events"`
	First       int    `json:"first_event"`
	Endings     []int  `json:"endings"`
	Unreachable []int  `json:"unreachable"`
}

// Validate loads an episode and checks its event graph.
// Data errors (parse, duplicate ids, dangling references) are returned as errors;
// unreachable events are reported but do not fail validation.
func Validate(env *Env, input ValidateInput) (*ValidateOutput, error) {
	lang := input.Language
	if lang == "" {
		lang = env.Config.Language
	}
	if input.Reload {
		env.Episodes.ClearCache()
	}

	ep, err := env.Episodes.Load(input.Episode, lang)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(ep)
	if err != nil {
		return nil, err
	}

	out := &ValidateOutput{
		Episode:     ep.ID,
		Title:       ep.Title,
		Language:    lang,
		Events:      g.Len(),
		First:       g.First().ID,
		Endings:     g.Endings(),
		Unreachable: g.Unreachable(),
	}
	if out.Endings == nil {
		out.Endings = []int{}
	}
	if out.Unreachable == nil {
		out.Unreachable = []int{}
	}
	return out, nil
}
