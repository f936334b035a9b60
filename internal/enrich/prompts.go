package enrich

import "fmt"

const analystContext = "You are a Dream Analyst AI, equipped with knowledge in psychology, philosophy, literature, science, mysticism, and ancient wisdom."

const analysisFramework = `You must analyze the dream within the following framework:
1: Psychological Underpinnings: Examine the dream through the lens of psychology.
2: Philosophical Context: Evaluate the dream's implications on existential questions.
3: Literary Narratives: Compare the dream to any well-known stories or myths.
4: Scientific Facts: What do the latest scientific studies say about such dreams?
5: Mystical Interpretations: Are there any mystical or spiritual aspects to consider?
6: Ancient Wisdom: How would this dream be interpreted in ancient cultures?
7: Physiological Meanings: What physiological factors might contribute to such dreams?`

// intelligenceLevels maps each analysis depth to its audience instruction and
// character budget. Unknown levels fall back to "general".
var intelligenceLevels = map[string]struct {
	instruction string
	charLimit   int
}{
	"simplified": {"Your task is to provide a simplified, jargon-free explanation of the dream. You are addressing an individual who prefers straightforward and easy-to-understand interpretations. Explain it to them like they are 10.", 150},
	"general":    {"Your task is to provide a balanced, comprehensive explanation of the dream. You are addressing an individual who prefers a well-rounded view.", 300},
	"detailed":   {"Your task is to provide a detailed, nuanced explanation of the dream. You are addressing an individual who appreciates depth and complexity.", 400},
	"expert":     {"Your task is to provide an expert-level, technical explanation of the dream. You are addressing an expert in the field of dream analysis.", 500},
	"research":   {"Your task is to provide an academic-level explanation of the dream with citations. You are addressing an academic researcher.", 600},
}

// analysisPrompt composes the full analysis prompt for a dream entry at the
// given intelligence level.
func analysisPrompt(entry, level string) string {
	lv, ok := intelligenceLevels[level]
	if !ok {
		lv = intelligenceLevels["general"]
	}
	return fmt.Sprintf("%s %s The dream is as follows: %s %s Your analysis should be up to %d characters.",
		analystContext, lv.instruction, entry, analysisFramework, lv.charLimit)
}

// imageSummaryPrompt asks for a sub-100-character scene description used as
// the image generation prompt core.
func imageSummaryPrompt(entry string) string {
	return fmt.Sprintf("Awaken to the depths of your subconscious, where dreams transcend reality. Describe the enigmatic tale of your nocturnal journey, where the ethereal dance of %s beguiles the senses. Condense this profound experience into a succinct prompt, grounding the essence of your dream in the realms of research, literature, science, mysticism, and ancient wisdom. This prompt will guide the DALLE AI image generation tool by OpenAI, all in under 100 characters.", entry)
}

// styleDescriptions maps a rendering style to its prompt prefix. Unknown
// styles render as renaissance.
var styleDescriptions = map[string]string{
	"renaissance": "A renaissance painting of",
	"abstract":    "An abstract representation of",
	"modern":      "A modern artwork of",
}

// qualityResolutions maps a quality tier to an image resolution. Unknown
// tiers render at the lowest resolution.
var qualityResolutions = map[string]string{
	"low":    "256x256",
	"medium": "512x512",
	"high":   "1024x1024",
}

func imagePrompt(style, summary string) string {
	desc, ok := styleDescriptions[style]
	if !ok {
		desc = styleDescriptions["renaissance"]
	}
	return fmt.Sprintf("%s %s, high quality, lucid dream themed.", desc, summary)
}

func imageResolution(quality string) string {
	if res, ok := qualityResolutions[quality]; ok {
		return res
	}
	return qualityResolutions["low"]
}
