package service

import (
	"fmt"
	"strings"
)

// Промпты повторяют требуемую форму ответа в каждом системном сообщении:
// модель обязана вернуть JSON с полями story и choices (или summary).
// Это инструкция, а не гарантия — извлечение все равно идет через каскад.

// moralSystemPrompt фиксирует формат ответа для моральной игры с 4 выборами.
const moralSystemPrompt = `You are creating an interactive story game with moral choices.
IMPORTANT: Always respond with valid JSON in EXACTLY this format, with no additional text before or after:
{
  "story": "The story text goes here",
  "choices": ["Virtuous choice", "Good choice", "Selfish choice", "Evil choice"]
}
The choices should represent a moral spectrum from good to evil.
Use escaped quotes (\") within the text if needed. Do not include backticks, code blocks, or any other formatting.
Your responses should be creative and engaging.`

// classicSystemPrompt — формат для классического режима с 2 выборами без морали.
const classicSystemPrompt = `You are creating an interactive story game.
IMPORTANT: Always respond with valid JSON in EXACTLY this format, with no additional text before or after:
{
  "story": "The story text goes here",
  "choices": ["First choice", "Second choice"]
}
Use escaped quotes (\") within the text if needed. Do not include backticks, code blocks, or any other formatting.
Your responses should be creative and engaging.`

const summarySystemPrompt = `You are a storytelling assistant that creates concise narrative summaries.
Always respond with a JSON object containing only a single 'summary' field with your summary text.
Keep summaries poetic and under 100 characters while capturing both events and decisions.`

const moralChoicesSystemPrompt = `You are a storytelling assistant that creates morally diverse choices.
Always respond with a JSON object containing a 'choices' array with exactly 4 choices.
Structure the choices in a spectrum from most virtuous/good (first) to most selfish/evil (last).
Each choice should be morally distinct but realistic for the character and situation.`

// systemPromptFor возвращает системный промпт для режима игры.
func systemPromptFor(mode Mode) string {
	if mode == ModeClassic {
		return classicSystemPrompt
	}
	return moralSystemPrompt
}

// openingPrompt строит стартовый запрос: завязка на распутье и точное число выборов.
func openingPrompt(mode Mode) string {
	var sb strings.Builder
	sb.WriteString("Create the beginning of an interactive story")
	if mode == ModeMoral {
		sb.WriteString(" with moral choices")
	}
	sb.WriteString(". \nThe player is standing at a crossroads, both literal and metaphorical.\n")
	sb.WriteString("Write exactly 3 sentences that describe what happens next.\n")
	if mode == ModeMoral {
		sb.WriteString("After the story, provide exactly 4 choices for the player, arranged from most virtuous/moral to most selfish/evil.")
	} else {
		fmt.Fprintf(&sb, "After the story, provide exactly %d choices for the player.", mode.ChoiceCount())
	}
	return sb.String()
}

// continuationPrompt строит запрос следующего хода с контекстом истории и выбором игрока.
func continuationPrompt(mode Mode, storyContext, chosenOption, descriptor string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The story so far: %q\n\n", storyContext)
	if mode == ModeMoral {
		fmt.Fprintf(&sb, "The player chose: %q (a %s choice)\n\n", chosenOption, descriptor)
		sb.WriteString("Continue the story based on this choice. The consequences should subtly reflect the moral nature of their decision.\n")
	} else {
		fmt.Fprintf(&sb, "The player chose: %q\n\n", chosenOption)
		sb.WriteString("Continue the story based on this choice.\n")
	}
	sb.WriteString("Write exactly 3 sentences that describe what happens next.\n")
	if mode == ModeMoral {
		sb.WriteString("After the story, provide exactly 4 new choices for the player, arranged from most virtuous/moral to most selfish/evil.\n")
	} else {
		fmt.Fprintf(&sb, "After the story, provide exactly %d new choices for the player.\n", mode.ChoiceCount())
	}
	sb.WriteString(`Remember to structure your response as valid JSON with "story" and "choices" fields.`)
	return sb.String()
}

// summaryPrompt строит запрос краткого пересказа; версия с выбором игрока
// просит сплести событие и решение в одну фразу.
func summaryPrompt(story, choice string) string {
	if choice != "" {
		return fmt.Sprintf(`Summarize this story excerpt AND the player's choice as a single narrative:

Story: %s
Player chose: %s

Create a cohesive dramatic summary that weaves together what happened and what choice was made.
Be poetic but concise - like a line from a novel that captures both the event and decision.`, story, choice)
	}
	return fmt.Sprintf(`Summarize this story excerpt in one short sentence, capturing its essence:

%s

Be poetic but concise.`, story)
}

// moralChoicesPrompt строит запрос на 4 выбора по моральному спектру.
func moralChoicesPrompt(storyContext, currentSituation string) string {
	return fmt.Sprintf(`Given the story context and current situation, generate 4 choices across a moral spectrum:

Story so far: %s
Current situation: %s

Create 4 choices where:
1. First choice is clearly good/virtuous/selfless
2. Second choice is moderately good/positive
3. Third choice is morally ambiguous/selfish
4. Fourth choice is clearly evil/malicious/harmful

Ensure all choices make sense in context and represent realistic options a character might consider.
Avoid obvious tropes or cartoonish evil. Make choices subtle and interesting.`, storyContext, currentSituation)
}
