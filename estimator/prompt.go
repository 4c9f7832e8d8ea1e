package estimator

import (
	"fmt"
	"strings"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

const foodSystemPrompt = `You are a nutrition assistant. Estimate the nutrition of the meal the user describes or photographs and return a JSON object with:
- "menu_name" (string, short title case name of the meal)
- "calories" (number, kcal for the whole meal)
- "protein" (number, grams)
- "fat" (number, grams)
- "carbs" (number, grams)

Always provide your best estimate, even for vague descriptions. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

const imageUserPrompt = "Estimate the nutrition of the meal in this photo."

const coachSystemPrompt = `You are a supportive fitness and nutrition coach. You get a user's body profile and their recent daily energy balance (intake, workout burn, base metabolism, balance, macros).
Write 3 to 5 short, concrete suggestions in plain text. Mention trends you see. Do not invent data that is not in the table.`

func coachUserPrompt(profile string, rows []balance.DailySummaryRow) string {
	var b strings.Builder
	if profile != "" {
		fmt.Fprintf(&b, "Profile: %s\n\n", profile)
	}
	b.WriteString(strings.Join(balance.SummaryHeader, ","))
	b.WriteByte('\n')
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%d,%d,%d,%d,%d,%.1f,%.1f,%.1f\n",
			r.Day, r.Intake, r.WorkoutBurn, r.BaseMetabolism, r.TotalOut, r.Balance,
			r.ProteinTotal, r.FatTotal, r.CarbTotal)
	}
	return b.String()
}
