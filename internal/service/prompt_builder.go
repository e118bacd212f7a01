package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder tokens a grading prompt template must carry.
const (
	PlaceholderQuestion      = "{{QUESTION}}"
	PlaceholderMaxScore      = "{{MAX_SCORE}}"
	PlaceholderStudentAnswer = "{{STUDENT_ANSWER}}"
	PlaceholderCorrectAnswer = "{{CORRECT_ANSWER_SECTION}}"
)

const correctAnswerSection = `Reference answer:
%s

Compare the student answer against this reference when scoring.`

const noCorrectAnswerSection = `No reference answer exists for this question. Judge the student answer on its own correctness and completeness.`

// PromptInput carries the per-submission values substituted into a template.
type PromptInput struct {
	Question      string
	CorrectAnswer string
	StudentAnswer string
	MaxScore      int
}

// ValidatePromptTemplate rejects templates missing any placeholder token.
// A template that renders with unresolved or absent placeholders produces
// grading instructions the model cannot follow.
func ValidatePromptTemplate(template string) error {
	for _, placeholder := range []string{PlaceholderQuestion, PlaceholderMaxScore, PlaceholderStudentAnswer, PlaceholderCorrectAnswer} {
		if !strings.Contains(template, placeholder) {
			return fmt.Errorf("template missing placeholder %s", placeholder)
		}
	}
	return nil
}

// BuildPrompt renders the grading instruction for one submission. The correct
// answer section tells the model explicitly when no ground truth exists
// instead of silently withholding it.
func BuildPrompt(template string, input PromptInput) string {
	section := noCorrectAnswerSection
	if strings.TrimSpace(input.CorrectAnswer) != "" {
		section = fmt.Sprintf(correctAnswerSection, input.CorrectAnswer)
	}

	replacer := strings.NewReplacer(
		PlaceholderQuestion, input.Question,
		PlaceholderMaxScore, strconv.Itoa(input.MaxScore),
		PlaceholderStudentAnswer, input.StudentAnswer,
		PlaceholderCorrectAnswer, section,
	)
	return replacer.Replace(template)
}
