package notifications

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a money amount with grouping and two decimals.
func FormatAmount(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// FormatRatio renders a ratio as a whole percentage, 0.756 -> "76%".
func FormatRatio(ratio float64) string {
	return printer.Sprintf("%d%%", int(math.Round(ratio*100)))
}

func BudgetWarning(userID string, ratio float64) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeBudgetWarning,
		Title:   "Budget alert",
		Message: printer.Sprintf("You have already used %s of your monthly budget.", FormatRatio(ratio)),
	}
}

func BudgetCritical(userID string, ratio float64) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeBudgetCritical,
		Title:   "Critical budget alert",
		Message: printer.Sprintf("Critical: you have already used %s of your monthly budget!", FormatRatio(ratio)),
	}
}

func GoalCreated(userID, goalTitle string) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeGoalContribution,
		Title:   "New goal added",
		Message: printer.Sprintf("You were added to a new goal: %s", goalTitle),
	}
}

func GoalAchieved(userID, goalTitle string) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeGoalAchieved,
		Title:   "Goal achieved!",
		Message: printer.Sprintf("Congratulations! The goal '%s' has been fully funded.", goalTitle),
	}
}

func GoalContributed(userID, contributorName, goalTitle string, amount float64) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeGoalContribution,
		Title:   "New goal contribution",
		Message: printer.Sprintf("%s contributed %s to the goal '%s'.", contributorName, FormatAmount(amount), goalTitle),
	}
}

func Manual(userID, title, body string) Draft {
	return Draft{
		UserID:  userID,
		Type:    TypeManual,
		Title:   normalizeText(title),
		Message: normalizeText(body),
	}
}

func normalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}
