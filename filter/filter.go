// Package filter drops feed items that fail named, config-defined rules.
package filter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scipunch/packard/config"
	"github.com/scipunch/packard/fetcher/types"
)

// Pipeline applies a series of named filters to feed items
type Pipeline struct {
	filters map[string]*compiled
}

type compiled struct {
	config          config.Filter
	excludePatterns []*regexp.Regexp
}

// New compiles the filters from config. An invalid pattern is a config error.
func New(filtersConfig map[string]config.Filter) (*Pipeline, error) {
	filters := make(map[string]*compiled, len(filtersConfig))

	for name, filterCfg := range filtersConfig {
		cf := &compiled{
			config:          filterCfg,
			excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludePatterns)),
		}
		for _, pattern := range filterCfg.ExcludePatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("filter '%s' has invalid pattern %q with %w", name, pattern, err)
			}
			cf.excludePatterns = append(cf.excludePatterns, re)
		}
		filters[name] = cf
	}

	return &Pipeline{filters: filters}, nil
}

// Apply keeps the items that pass every named filter, preserving order
func (p *Pipeline) Apply(items []types.FeedItem, filterNames []string) []types.FeedItem {
	if len(filterNames) == 0 {
		return items
	}

	kept := make([]types.FeedItem, 0, len(items))
	for _, item := range items {
		ok, reason := p.ShouldInclude(item, filterNames)
		if !ok {
			slog.Debug("item filtered out", "title", item.Title, "reason", reason, "url", item.Link)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// ShouldInclude reports whether the item passes all filters in order.
// The second value names the rule that rejected it.
func (p *Pipeline) ShouldInclude(item types.FeedItem, filterNames []string) (bool, string) {
	for _, name := range filterNames {
		f, exists := p.filters[name]
		if !exists {
			slog.Warn("filter not found, skipping", "filter_name", name)
			continue
		}
		if ok, reason := f.check(item, name); !ok {
			return false, reason
		}
	}
	return true, ""
}

func (f *compiled) check(item types.FeedItem, name string) (bool, string) {
	text := item.Title + " " + item.Description

	if f.config.MinLength > 0 && utf8.RuneCountInString(text) < f.config.MinLength {
		return false, name + ":min_length"
	}

	if f.config.MinWords > 0 && countWords(text) < f.config.MinWords {
		return false, name + ":min_words"
	}

	for i, pattern := range f.excludePatterns {
		if pattern.MatchString(text) {
			return false, name + ":exclude_pattern[" + f.config.ExcludePatterns[i] + "]"
		}
	}

	if f.config.RequireParagraphs && !hasMultipleParagraphs(text) {
		return false, name + ":require_paragraphs"
	}

	return true, ""
}

func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}

func hasMultipleParagraphs(text string) bool {
	nonEmpty := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	return nonEmpty >= 2
}
