package client

import (
	"strings"

	pui "github.com/manifoldco/promptui"

	"recsort/record"
)

type Prompter interface {
	SelectSortKey() (record.SortKey, error)
}

type PrompterImpl struct{}

func NewPrompter() Prompter {
	return &PrompterImpl{}
}

func (p *PrompterImpl) SelectSortKey() (record.SortKey, error) {
	choices := record.SortKeyNames()
	searcher := func(input string, i int) bool {
		name := strings.Replace(strings.ToLower(choices[i]), "_", "", -1)
		input = strings.Replace(strings.ToLower(input), " ", "", -1)
		return strings.Contains(name, input)
	}
	prompt := pui.Select{
		Label:        "Sort records by",
		Items:        choices,
		Size:         len(choices),
		HideSelected: true,
		Searcher:     searcher,
	}
	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return record.ParseSortKey(selected)
}
