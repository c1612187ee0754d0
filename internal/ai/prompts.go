package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/thomas-vilte/ticketmate/internal/models"
)

// MaxQuestions is how many clarifying questions the model may ask per round.
const MaxQuestions = 3

// PromptData holds the parameters for template rendering
type PromptData struct {
	TeamName         string
	Rules            string
	TeamLead         string
	JiraProject      string
	DefaultIssueType string
	MaxQuestions     int
	Teams            []VoiceTeam
}

// VoiceTeam is one line of the team list in the voice prompt.
type VoiceTeam struct {
	Name string
	Lead string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

const (
	systemPromptTemplateEN = `You are an expert at writing Jira tickets. Your job is to help the team "{{.TeamName}}" file a ticket strictly following their rules.

## Team rules:
{{.Rules}}

## Team lead:
{{.TeamLead}}

## Jira project: {{.JiraProject}}
## Default issue type: {{.DefaultIssueType}}

## Instructions:
1. Analyze the user's request.
2. If there is enough information, write the ticket following the team rules.
3. If there is not enough information, ask clarifying questions (no more than {{.MaxQuestions}}).
4. ALWAYS reply with ONLY valid JSON and no text outside the JSON.

If there is enough information:
{
  "status": "ready",
  "task_title": "Short ticket title",
  "task_text": "Full ticket description in Markdown",
  "jira_params": {
    "project": "{{.JiraProject}}",
    "type": "Story/Bug/Task",
    "priority": "High/Medium/Low",
    "labels": []
  }
}

If more information is needed:
{
  "status": "need_clarification",
  "questions": ["Question 1?", "Question 2?"]
}

Reply in English. Do not add any text outside the JSON object.`

	systemPromptTemplateES = `Eres un experto en redactar tickets de Jira. Tu trabajo es ayudar al equipo "{{.TeamName}}" a crear un ticket siguiendo estrictamente sus reglas.

## Reglas del equipo:
{{.Rules}}

## Líder del equipo:
{{.TeamLead}}

## Proyecto de Jira: {{.JiraProject}}
## Tipo de ticket por defecto: {{.DefaultIssueType}}

## Instrucciones:
1. Analiza el pedido del usuario.
2. Si hay suficiente información, redacta el ticket según las reglas del equipo.
3. Si no hay suficiente información, haz preguntas aclaratorias (no más de {{.MaxQuestions}}).
4. Responde SIEMPRE SOLO con JSON válido, sin texto fuera del JSON.

Si hay suficiente información:
{
  "status": "ready",
  "task_title": "Título breve del ticket",
  "task_text": "Descripción completa del ticket en Markdown",
  "jira_params": {
    "project": "{{.JiraProject}}",
    "type": "Story/Bug/Task",
    "priority": "High/Medium/Low",
    "labels": []
  }
}

Si se necesita más información:
{
  "status": "need_clarification",
  "questions": ["¿Pregunta 1?", "¿Pregunta 2?"]
}

Responde en español. No agregues texto fuera del objeto JSON.`

	systemPromptTemplateRU = `Ты — эксперт по составлению задач в Jira. Твоя задача — помочь оформить задачу для команды "{{.TeamName}}" строго по их правилам.

## Правила команды:
{{.Rules}}

## Руководитель команды:
{{.TeamLead}}

## Проект Jira: {{.JiraProject}}
## Тип задачи по умолчанию: {{.DefaultIssueType}}

## Инструкции:
1. Проанализируй запрос пользователя.
2. Если информации достаточно, сформулируй задачу по правилам команды.
3. Если информации недостаточно, задай уточняющие вопросы (не более {{.MaxQuestions}}).
4. ВСЕГДА отвечай ТОЛЬКО валидным JSON без какого-либо текста вне JSON.

Если информации достаточно:
{
  "status": "ready",
  "task_title": "Краткое название задачи",
  "task_text": "Полное описание задачи в формате Markdown",
  "jira_params": {
    "project": "{{.JiraProject}}",
    "type": "Story/Bug/Task",
    "priority": "High/Medium/Low",
    "labels": []
  }
}

Если нужна дополнительная информация:
{
  "status": "need_clarification",
  "questions": ["Вопрос 1?", "Вопрос 2?"]
}

Отвечай на русском языке. Не добавляй никакого текста вне JSON-объекта.`
)

const (
	voicePromptTemplateEN = `You analyze audio recordings of work conversations.

Known teams:
{{range .Teams}}- Name: {{.Name}}, Lead: {{.Lead}}
{{end}}
Task:
1. Work out which team the conversation is about (by team name or by the lead's name). Return the EXACT team name from the list above, or null if it cannot be determined unambiguously.
2. Write a short description of the ticket to create, based on the conversation. Write in the third person, as a Jira ticket description.

Return ONLY JSON with no markdown blocks or comments:
{"team_name": "<exact name from the list or null>", "description": "<ticket description>"}`

	voicePromptTemplateES = `Analizas grabaciones de audio de conversaciones de trabajo.

Equipos conocidos:
{{range .Teams}}- Nombre: {{.Name}}, Líder: {{.Lead}}
{{end}}
Tarea:
1. Determina de qué equipo se habla (por el nombre del equipo o del líder). Devuelve el nombre EXACTO del equipo de la lista, o null si no se puede determinar sin ambigüedad.
2. Redacta una breve descripción del ticket a crear a partir de la conversación. Escribe en tercera persona, como la descripción de un ticket de Jira.

Devuelve SOLO JSON, sin bloques markdown ni comentarios:
{"team_name": "<nombre exacto de la lista o null>", "description": "<descripción del ticket>"}`

	voicePromptTemplateRU = `Ты помощник, который анализирует аудиозаписи рабочих разговоров.

Доступные команды:
{{range .Teams}}- Название: {{.Name}}, Руководитель: {{.Lead}}
{{end}}
Задача:
1. Определи, о какой команде идёт речь (по названию команды или имени руководителя). Верни ТОЧНОЕ название команды из списка выше, или null, если не удалось однозначно определить.
2. Сформулируй краткое описание задачи, которую нужно создать, на основе разговора. Пиши от третьего лица, как будто описываешь задачу для Jira.

Верни ТОЛЬКО JSON без markdown-блоков и комментариев:
{"team_name": "<точное название из списка или null>", "description": "<описание задачи>"}`
)

type promptLocale struct {
	system        string
	voice         string
	request       string
	answersHeader string
	question      string
	answer        string
	noRules       string
	noLead        string
	fallbackTitle string
}

var promptLocales = map[string]promptLocale{
	"en": {
		system:        systemPromptTemplateEN,
		voice:         voicePromptTemplateEN,
		request:       "Task creation request:",
		answersHeader: "## Answers to clarifying questions:",
		question:      "Question",
		answer:        "Answer",
		noRules:       "(no rules specified)",
		noLead:        "(not specified)",
		fallbackTitle: "Task",
	},
	"es": {
		system:        systemPromptTemplateES,
		voice:         voicePromptTemplateES,
		request:       "Solicitud de creación de ticket:",
		answersHeader: "## Respuestas a las preguntas aclaratorias:",
		question:      "Pregunta",
		answer:        "Respuesta",
		noRules:       "(sin reglas definidas)",
		noLead:        "(no especificado)",
		fallbackTitle: "Tarea",
	},
	"ru": {
		system:        systemPromptTemplateRU,
		voice:         voicePromptTemplateRU,
		request:       "Запрос на создание задачи:",
		answersHeader: "## Ответы на уточняющие вопросы:",
		question:      "Вопрос",
		answer:        "Ответ",
		noRules:       "(правила не заданы)",
		noLead:        "(не указан)",
		fallbackTitle: "Задача",
	},
}

func localeFor(lang string) promptLocale {
	if l, ok := promptLocales[lang]; ok {
		return l
	}
	return promptLocales["en"]
}

// FallbackTitle is the ticket title used when the model reply has none.
func FallbackTitle(lang string) string {
	return localeFor(lang).fallbackTitle
}

// PromptAssembler builds every prompt sent to the model in one fixed
// language. Output depends only on the inputs, so equal inputs give
// byte-identical prompts.
type PromptAssembler struct {
	locale promptLocale
}

// NewPromptAssembler selects the prompt language; unknown values use English.
func NewPromptAssembler(lang string) *PromptAssembler {
	return &PromptAssembler{locale: localeFor(lang)}
}

func (p *PromptAssembler) FallbackTitle() string {
	return p.locale.fallbackTitle
}

func (p *PromptAssembler) BuildSystemPrompt(team models.TeamProfile) (string, error) {
	data := PromptData{
		TeamName:         team.Name,
		Rules:            orPlaceholder(team.Rules, p.locale.noRules),
		TeamLead:         orPlaceholder(team.TeamLead, p.locale.noLead),
		JiraProject:      team.JiraProject,
		DefaultIssueType: team.DefaultIssueType,
		MaxQuestions:     MaxQuestions,
	}
	return RenderPrompt("system", p.locale.system, data)
}

// BuildUserMessage appends the answered questions, in order, after the
// request. The answers section is omitted when there are none.
func (p *PromptAssembler) BuildUserMessage(userText string, answers []models.QA) string {
	var sb strings.Builder
	sb.WriteString(p.locale.request)
	sb.WriteString("\n")
	sb.WriteString(userText)

	if len(answers) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(p.locale.answersHeader)
		sb.WriteString("\n")
		for _, qa := range answers {
			fmt.Fprintf(&sb, "\n%s: %s\n%s: %s\n", p.locale.question, qa.Question, p.locale.answer, qa.Answer)
		}
	}

	return sb.String()
}

func (p *PromptAssembler) BuildVoicePrompt(teams []models.TeamProfile) (string, error) {
	data := PromptData{Teams: make([]VoiceTeam, 0, len(teams))}
	for _, t := range teams {
		data.Teams = append(data.Teams, VoiceTeam{Name: t.Name, Lead: orPlaceholder(t.TeamLead, p.locale.noLead)})
	}
	return RenderPrompt("voice", p.locale.voice, data)
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
