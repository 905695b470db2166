package commands

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/classcmd/pkg/classcmd"
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}

	rollDie = func(sides int) int { return rand.Intn(sides) + 1 }
)

type term struct {
	value  int
	desc   string
	op     string
	isDice bool
}

// Roll rolls dice.
type Roll struct {
	classcmd.SlashCommand

	Formula string
}

func (Roll) Doc() string {
	return `Roll dices like ` + "`2d20+1d6-2`" + `

	Args:
	    Formula: Supports ` + "`2d6+1d4*2-3`" + ` and similar math.
	`
}

func (c *Roll) Callback(ctx context.Context) error {
	formula := strings.ReplaceAll(c.Formula, " ", "")
	total, pretty, err := evaluate(formula)
	if err != nil {
		return respondEmbedEphemeral(c, &discordgo.MessageEmbed{Description: err.Error()})
	}

	return respondEmbed(c, &discordgo.MessageEmbed{
		Title:       "🎲 Dice Roll",
		Description: fmt.Sprintf("**User Input**:\t`%s`\n**Calculation**:\t%s\n**Result**:\t**%d**", formula, pretty, total),
	})
}

// evaluate computes a formula such as 2d6+1d4*2-3. Multiplication and division
// bind to the term on their left.
func evaluate(formula string) (int, string, error) {
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return 0, "", fmt.Errorf("Can't parse your formula. Try something like `2d6+1d4*2-3`")
	}

	var terms []term
	currentOp := "+"
	for _, token := range tokens {
		if validOps[token] {
			currentOp = token
			continue
		}
		val, desc, err := evaluateToken(token)
		if err != nil {
			return 0, "", fmt.Errorf("Failed to evaluate `%s`: %v", token, err)
		}
		terms = append(terms, term{
			value:  val,
			desc:   desc,
			op:     currentOp,
			isDice: strings.Contains(desc, "["),
		})
	}

	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return 0, "", fmt.Errorf("Can't multiply or divide by nothing.")
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		var v int
		switch t.op {
		case "*":
			v = prev.value * t.value
		case "/":
			if t.value == 0 {
				return 0, "", fmt.Errorf("Can't divide by zero.")
			}
			v = prev.value / t.value
		}
		merged = append(merged, term{
			value:  v,
			desc:   fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:     prev.op,
			isDice: prev.isDice || t.isDice,
		})
	}

	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)

		switch t.op {
		case "+":
			total += t.value
		case "-":
			total -= t.value
		}
	}
	return total, strings.Join(details, ""), nil
}

func evaluateToken(token string) (int, string, error) {
	if matches := diceRegex.FindStringSubmatch(token); matches != nil {
		count := 1
		if matches[1] != "" {
			n, err := strconv.Atoi(matches[1])
			if err != nil {
				return 0, "", fmt.Errorf("invalid dice count")
			}
			count = n
		}

		sides, err := strconv.Atoi(matches[2])
		if err != nil || sides < 2 {
			return 0, "", fmt.Errorf("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", fmt.Errorf("too big. max 100 dice, 1000 sides")
		}

		var sum int
		rolls := make([]string, 0, count)
		for i := 0; i < count; i++ {
			r := rollDie(sides)
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("`%s` [%s]", token, strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", fmt.Errorf("not a number or dice")
	}
	return num, fmt.Sprintf("`%d`", num), nil
}
