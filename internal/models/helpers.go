package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return uuid.New().String()
}

func GenerateBetID() string {
	return fmt.Sprintf("bet_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid color: %q", s)
	}
	return c, nil
}

func (c Color) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Banner is the short result line shown right after a bet.
func (o *BetOutcome) Banner() string {
	var msg string
	switch {
	case o.GameWon:
		msg = "You won the game!"
	case o.GameOver:
		msg = "You overran your credit limit! You lost!"
	case o.BetWon:
		msg = "You won!"
	default:
		msg = "No luck! You can still try"
	}
	return o.Color.Title() + ". " + msg
}

func (o *BetOutcome) Message() string {
	if o.GameOver {
		if o.GameWon {
			return "You won the game!"
		}
		return "You ran out of money. You are now in debt and broke!"
	}
	if o.BetWon {
		return "You won the bet. Continue to the next round"
	}
	return "You lost your bet. You are doubling your wager now to try to compensate"
}

func (o *BetOutcome) MessageClass() string {
	if o.GameWon || o.BetWon {
		return "good-message"
	}
	return "bad-message"
}

func FormatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
