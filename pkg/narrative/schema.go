package narrative

// ResponseSchema returns the JSON schema hint for providers with
// structured-output support. It mirrors the Response wire shape;
// Interpret remains the authority on validation either way.
func ResponseSchema() map[string]interface{} {
	statMap := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": map[string]interface{}{"type": "integer"},
	}
	item := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"name":      map[string]interface{}{"type": "string"},
			"count":     map[string]interface{}{"type": "integer"},
			"tags":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"type":      map[string]interface{}{"type": "string"},
			"icon":      map[string]interface{}{"type": "string"},
			"value":     map[string]interface{}{"type": []string{"number", "null"}},
			"max_value": map[string]interface{}{"type": []string{"number", "null"}},
		},
		"required": []string{"name"},
	}
	itemList := map[string]interface{}{"type": "array", "items": item}

	room := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "string"},
			"name":        map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"exits": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "string"},
			},
			"coordinates": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer"},
					"y": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"x", "y"},
			},
			"interactables": map[string]interface{}{"type": "array"},
			"exit_condition": map[string]interface{}{
				"type": []string{"object", "null"},
				"properties": map[string]interface{}{
					"direction": map[string]interface{}{"type": "string"},
					"requires":  map[string]interface{}{"type": "string"},
				},
			},
		},
		"required": []string{"id"},
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"narrative":     map[string]interface{}{"type": "string"},
			"outcome":       map[string]interface{}{"type": "string", "enum": []string{"SUCCESS", "FAILURE", "NEUTRAL"}},
			"stats_set":     statMap,
			"stat_updates":  statMap,
			"inventory_set": itemList,
			"inventory_updates": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"add":    itemList,
					"remove": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				},
			},
			"quest_update":   map[string]interface{}{"type": "string"},
			"summary_update": map[string]interface{}{"type": "string"},
			"game_over":      map[string]interface{}{"type": "boolean"},
			"choices": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"label":  map[string]interface{}{"type": "string"},
						"action": map[string]interface{}{"type": "string"},
						"type":   map[string]interface{}{"type": "string"},
					},
					"required": []string{"label", "action"},
				},
			},
			"room_id": map[string]interface{}{"type": "string"},
			"map_data": map[string]interface{}{
				"type": []string{"object", "null"},
				"properties": map[string]interface{}{
					"entry_room_id": map[string]interface{}{"type": "string"},
					"rooms":         map[string]interface{}{"type": "array", "items": room},
				},
			},
			"environment_tags": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"visual_effect":    map[string]interface{}{"type": "string"},
		},
		"required": []string{"narrative"},
	}
}
