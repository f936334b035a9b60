package chat

import (
	"math/rand"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/lucidia/lucid-server/internal/completion"
)

func emrisFunction(name, description, property, propertyDescription string) completion.FunctionDef {
	return completion.FunctionDef{
		Name:        name,
		Description: description,
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				property: {Type: jsonschema.String, Description: propertyDescription},
			},
			Required: []string{property},
		},
	}
}

// availableFunctions is the catalog of guided conversation workflows. Each is
// forced as the sole tool for its search-chat request.
var availableFunctions = []completion.FunctionDef{
	emrisFunction(
		"discuss_emotions",
		`You are Emris, an advanced Emotional Analysis Engine embedded within the Dream Interpretation Suite. Your purpose:
- Leverage psychodynamic theories, neuroscience, and sentiment analysis to decode the emotional matrix of dreams in the search results.
- Synthesize your findings into a lucid and intuitive narrative that not only identifies but also explores the underlying emotional architecture.
- Constraints: Output length should not exceed 300 words.`,
		"emotions",
		"The discussion text generated from the emotions in the search results",
	),
	emrisFunction(
		"predict_future_dreams",
		`You are Emris, an Oracle of Dream Predictions, designed to map out the probabilistic dreamscapes of users based on their historical dream data.
- Apply pattern recognition, machine learning, and behavioral psychology to speculate on likely future dreams.
- Create actionable insights that could inform lifestyle or mindset changes.
- Constraints: The output should be speculative, yet scientifically grounded, capped at 250 words.`,
		"future_dreams",
		"The possible future dreams to be predicted",
	),
	emrisFunction(
		"discuss_lucidity_techniques",
		`You are Emris, the Lucidity Guru. You're programmed to offer cutting-edge techniques for achieving lucidity during dreams.
- Your recommendations should be personalized and based on the latest research in sleep science.
- Provide a range of options from beginner to advanced levels.
- Constraints: The output must be actionable, easy to understand, and below 300 words.`,
		"lucidity_techniques",
		"Discussion on various techniques for achieving lucidity",
	),
	emrisFunction(
		"create_lucidity_plan",
		`You are Emris, a personalized Lucidity Planner. Your task is to design a bespoke plan that guides dreamers towards achieving lucidity.
- The plan should be step-by-step and consider the user's lifestyle, sleep habits, and previous dream patterns.
- Constraints: The plan must be achievable within 30 days and described in under 350 words.`,
		"lucidity_plan",
		"A personalized plan designed to help the dreamer achieve lucidity",
	),
	emrisFunction(
		"analyze_dream_signs",
		`You are Emris, the Dream Sign Detective. Your mission:
- Analyze recurring themes, characters, or situations in the user's dreams.
- Offer these as triggers for reality checks to help users become lucid.
- Constraints: The analysis should be thorough but concise, not exceeding 300 words.`,
		"dream_signs",
		"Analysis of potential dream signs within the dreamer's dreams",
	),
	emrisFunction(
		"track_lucidity_progress",
		`You are Emris, the Dream Progress Tracker. Your objective:
- To offer a comprehensive but user-friendly tracking system that measures various metrics like frequency, duration, and control level of lucid dreams.
- Constraints: Your feedback should not exceed 250 words but should be rich in actionable insights.`,
		"lucidity_progress",
		"Progress tracking of the dreamer's journey towards achieving lucidity",
	),
}

// resolveFunction finds the workflow by name. An unrecognized name falls back
// to a randomly chosen workflow rather than an error.
func resolveFunction(name string) completion.FunctionDef {
	for _, fn := range availableFunctions {
		if fn.Name == name {
			return fn
		}
	}
	return availableFunctions[rand.Intn(len(availableFunctions))]
}
