package drafts

// recordSchema describes a draft file on disk. Arrays are nullable because
// empty slices are written as null.
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "created_at", "updated_at", "user_input", "stage"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "created_at": {"type": "string"},
    "updated_at": {"type": "string"},
    "team_name": {"type": "string"},
    "user_input": {"type": "string"},
    "stage": {"enum": ["input", "clarification", "ready"]},
    "questions": {"type": ["array", "null"], "items": {"type": "string"}},
    "answers": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["question", "answer"],
        "properties": {
          "question": {"type": "string"},
          "answer": {"type": "string"}
        }
      }
    },
    "pending_answers": {"type": ["array", "null"], "items": {"type": "string"}},
    "round": {"type": "integer", "minimum": 0},
    "result": {
      "oneOf": [
        {"type": "null"},
        {
          "type": "object",
          "required": ["status"],
          "properties": {
            "status": {"enum": ["ready", "need_clarification"]},
            "title": {"type": "string"},
            "body": {"type": "string"},
            "params": {
              "type": ["object", "null"],
              "additionalProperties": {
                "oneOf": [
                  {"type": "string"},
                  {"type": "array", "items": {"type": "string"}}
                ]
              }
            },
            "questions": {"type": ["array", "null"], "items": {"type": "string"}}
          }
        }
      ]
    }
  }
}`
