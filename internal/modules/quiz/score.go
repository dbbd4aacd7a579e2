package quiz

import (
	"fmt"
	"sort"
	"strings"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
)

// Answers maps question id to the selection made for it.
type Answers map[string]types.QuizAnswer

type Result struct {
	Scores    map[Archetype]int `json:"scores"`
	Ranking   []Archetype       `json:"ranking"`
	Primary   Archetype         `json:"primary"`
	Secondary Archetype         `json:"secondary"`

	TimeBucket     string   `json:"time_bucket"`
	Gear           []string `json:"gear"`
	TargetAudience string   `json:"target_audience"`
	Topics         []string `json:"topics"`
	PlatformBias   []string `json:"platform_bias"`
}

// Score sums the weights of every selected option and ranks archetypes by
// score, ties going to the earlier-declared archetype. Unknown question or
// option ids contribute nothing.
func Score(c *Catalog, answers Answers) Result {
	res := Result{
		Scores: make(map[Archetype]int, len(Archetypes)),
		Gear:   []string{},
		Topics: []string{},

		PlatformBias: []string{},
	}
	for _, a := range Archetypes {
		res.Scores[a] = 0
	}

	for qi := range c.Questions {
		q := &c.Questions[qi]
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		selected := selectedOptions(q, ans)
		for _, o := range selected {
			for a, w := range o.Weights {
				res.Scores[a] += w
			}
		}
		extractMeta(&res, q, selected, ans)
	}

	res.Ranking = append([]Archetype(nil), Archetypes...)
	sort.SliceStable(res.Ranking, func(i, j int) bool {
		return res.Scores[res.Ranking[i]] > res.Scores[res.Ranking[j]]
	})
	res.Primary = res.Ranking[0]
	res.Secondary = res.Ranking[1]
	return res
}

func selectedOptions(q *Question, ans types.QuizAnswer) []Option {
	out := []Option{}
	seen := map[string]bool{}
	for _, id := range ans.OptionIDs {
		if seen[id] {
			continue
		}
		o, ok := q.option(id)
		if !ok {
			continue
		}
		seen[id] = true
		out = append(out, o)
		if q.Kind == KindSingle {
			break
		}
	}
	return out
}

func extractMeta(res *Result, q *Question, selected []Option, ans types.QuizAnswer) {
	text := strings.TrimSpace(ans.Text)
	switch q.Meta {
	case MetaTimeBucket:
		if len(selected) > 0 {
			res.TimeBucket = selected[0].MetaValue()
		}
	case MetaGear:
		for _, o := range selected {
			res.Gear = append(res.Gear, o.MetaValue())
		}
	case MetaPlatform:
		for _, o := range selected {
			res.PlatformBias = append(res.PlatformBias, o.MetaValue())
		}
	case MetaAudience:
		if len(selected) > 0 {
			res.TargetAudience = selected[0].MetaValue()
		}
		if q.AllowText && text != "" {
			res.TargetAudience = text
		}
	case MetaTopics:
		for _, o := range selected {
			res.Topics = append(res.Topics, o.MetaValue())
		}
		if q.AllowText {
			res.Topics = appendUnique(res.Topics, splitFreeText(text)...)
		}
	}
}

func splitFreeText(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		dup := false
		for _, d := range dst {
			if strings.EqualFold(d, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

// Unanswered lists, in catalog order, the questions without a usable answer.
func (c *Catalog) Unanswered(answers Answers) []string {
	out := []string{}
	for qi := range c.Questions {
		q := &c.Questions[qi]
		ans := answers[q.ID]
		if len(selectedOptions(q, ans)) > 0 {
			continue
		}
		if q.AllowText && strings.TrimSpace(ans.Text) != "" {
			continue
		}
		out = append(out, q.ID)
	}
	return out
}

// Check rejects submissions with unanswered questions or several options on
// a single-select question.
func (c *Catalog) Check(answers Answers) error {
	if missing := c.Unanswered(answers); len(missing) > 0 {
		return fmt.Errorf("unanswered questions: %s", strings.Join(missing, ", "))
	}
	for id, ans := range answers {
		q, ok := c.question(id)
		if !ok {
			continue
		}
		if q.Kind == KindSingle && len(ans.OptionIDs) > 1 {
			return fmt.Errorf("question %q accepts a single option", id)
		}
	}
	return nil
}
