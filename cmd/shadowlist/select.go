package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// pickShadowFile lets the user choose a shadow file from the library. Typing
// filters the list by substring, case-insensitive.
func pickShadowFile(names []string) (string, error) {
	prompt := promptui.Select{
		Label: "Select playlist",
		Items: names,
		Size:  12,
		Searcher: func(input string, index int) bool {
			name := strings.ToLower(names[index])
			return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
		},
		StartInSearchMode: true,
	}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("select playlist: %w", err)
	}
	return name, nil
}
