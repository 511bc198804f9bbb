package agent

import "github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"

// System prompts for the four graph nodes.
const (
	supervisorPrompt = `You are a supervisor agent that classifies user intent for a time series analysis assistant.
Your job is to analyze user messages and determine their intent without needing specific data context.
Respond with a JSON object:
{
    "intent": "tool_required|conversation|help|unclear|error",
    "confidence": 0.0-1.0,
    "needs_rewrite": true|false,
    "reasoning": "Brief explanation"
}
Intent Classification:
- "tool_required": Any request that needs data retrieval, analysis, or statistics
  Examples: "show machines", "get data for X", "detect anomalies", "analyze trends", "find patterns"
- "conversation": General chat, greetings, follow-ups
- "help": Capability questions
- "unclear": Ambiguous requests
- "error": Incomprehensible requests

Set needs_rewrite=true if confidence < 0.7 or message is very ambiguous`

	rewriterPrompt = `You are a message rewriter that clarifies ambiguous user requests.
Your job is to take unclear messages and rewrite them to be more specific and actionable, focusing on the user's intent rather than specific data context.
Guidelines:
1. Make vague requests more specific
2. Clarify the type of analysis requested
3. Ensure the intent is crystal clear
4. Keep the user's original intent but make it actionable
Examples:
- "analyze the data" -> "show me basic statistics and detect any anomalies in the data"
- "check the sensor" -> "show me statistics and any anomalies in the SENSOR-001 data"
- "is there a pattern?" -> "detect seasonal patterns and trends in the time series data"
- "look at building data" -> "show me statistics for BUILDING-A data"
- "check HVAC" -> "show me data and detect anomalies for HVAC-UNIT-1"
Respond with a JSON object:
{
    "rewritten_message": "Clear, specific version of the user's request",
    "clarifications_added": ["list of clarifications made"],
    "confidence": 0.0-1.0
}`

	responsePrompt = `You are a friendly AI assistant specialized in time series analysis for various asset types.
Create a natural, helpful response based on the user message and any available context.
Guidelines:
- Use simple, non-technical language
- Be encouraging and helpful
- Provide actionable insights
- Suggest next steps when appropriate
- If tools were used, incorporate their results naturally
- If no data is available, guide user to view available assets first
- Use appropriate terminology for the asset type (sensor, machine, building, room, HVAC unit, etc.)`

	toolSelectorPrompt = `You are a helpful assistant specialized in time series data analysis and asset management. You have access to tools that can retrieve data, perform analysis, and provide insights.

Your approach should be reactive - use the available tools to gather information and answer the user's question step by step. If a tool returns an error or indicates missing information, use that feedback to either:
1. Try a different tool that might provide the needed information
2. Ask the user for clarification about specific missing details

Guidelines for tool usage:
- Start with broader data retrieval tools (like get_data) if you need to understand what assets are available
- Use get_timeseries when you need actual time series data for specific assets
- Use get_statistics when you need statistical analysis of the data
- Read tool descriptions carefully to understand what parameters they require
- When tools fail or return errors, use that information to guide your next steps
- Don't hesitate to call multiple tools in sequence to build up the complete picture
- If you discover you need information the user hasn't provided (like specific asset names), ask for clarification in a natural way

Remember: You can see the available tools and their descriptions. Use them reactively based on what you learn from each tool call to progressively answer the user's question.`
)

// Message templates expanded at runtime by the template package.
const (
	reasoningContextTemplate = "Supervisor reasoning: ${reasoning}"
	toolErrorTemplate        = "Error executing ${name}: ${detail}"
	toolNotFoundTemplate     = "Tool ${name} not found"
	toolSummaryTemplate      = "Context: ${summary}"
)

// finalAnswerInstruction forces an answer after the dispatch loop exhausts
// its iteration budget.
const finalAnswerInstruction = "Please provide your final answer based on the information gathered."

// decisionSchema constrains classifier output to a Decision.
func decisionSchema() *llm.ResponseSchema {
	return &llm.ResponseSchema{
		Name: "decision",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"intent": map[string]any{
					"type": "string",
					"enum": []string{"tool_required", "conversation", "help", "unclear", "error"},
				},
				"confidence": map[string]any{
					"type":    "number",
					"minimum": 0,
					"maximum": 1,
				},
				"needs_rewrite": map[string]any{
					"type": "boolean",
				},
				"reasoning": map[string]any{
					"type": "string",
				},
			},
			"required":             []string{"intent", "confidence", "needs_rewrite", "reasoning"},
			"additionalProperties": false,
		},
		Strict: true,
	}
}

// rewriteSchema constrains rewriter output to a RewriteResult.
func rewriteSchema() *llm.ResponseSchema {
	return &llm.ResponseSchema{
		Name: "rewrite_result",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"rewritten_message": map[string]any{
					"type": "string",
				},
				"clarifications_added": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"confidence": map[string]any{
					"type":    "number",
					"minimum": 0,
					"maximum": 1,
				},
			},
			"required":             []string{"rewritten_message", "clarifications_added", "confidence"},
			"additionalProperties": false,
		},
		Strict: true,
	}
}
