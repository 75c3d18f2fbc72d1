package service

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

// ComputeAccuracy scores recognized text against what the caller expected to be on the card.
// Both strings are compared case-insensitively with whitespace collapsed.
func ComputeAccuracy(expected, recognized string) models.Accuracy {
	refWords := strings.Fields(strings.ToLower(expected))
	candWords := strings.Fields(strings.ToLower(recognized))
	ref := strings.Join(refWords, " ")
	cand := strings.Join(candWords, " ")

	var acc models.Accuracy
	if len(refWords) == 0 {
		if len(candWords) > 0 {
			acc.WER, acc.CER = 1, 1
		}
		acc.MatchScore = 1 - acc.CER
		return acc
	}

	acc.WER, _ = wer.WER(refWords, candWords)
	acc.CER = float64(levenshtein.Distance(ref, cand)) / float64(utf8.RuneCountInString(ref))
	acc.MatchScore = math.Max(0, 1-acc.CER)
	acc.WER = round4(acc.WER)
	acc.CER = round4(acc.CER)
	acc.MatchScore = round4(acc.MatchScore)
	return acc
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
