package service

import (
	"regexp"
	"strings"
)

var (
	dishLinePattern       = regexp.MustCompile(`(?m)БЛЮДА:[ \t]*(.*?)[ \t]*$`)
	ingredientLinePattern = regexp.MustCompile(`(?m)ИНГРЕДИЕНТЫ:[ \t]*(.*?)[ \t]*$`)
)

// parseTerms 解析「БЛЮДА: …」與「ИНГРЕДИЕНТЫ: …」兩行
func parseTerms(response string) (dish, ingredients []string) {
	return parseLine(dishLinePattern, response), parseLine(ingredientLinePattern, response)
}

func parseLine(pattern *regexp.Regexp, response string) []string {
	m := pattern.FindStringSubmatch(response)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		part = strings.Trim(part, ".;\"'")
		if part == "" || part == "-" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// cleanReply 去掉模型常見的引號與前綴
func cleanReply(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "Ответ:")
	text = strings.TrimSpace(text)
	return strings.Trim(text, "\"«»")
}
