package neural

// IODescriptor describes a policy input or output for display.
type IODescriptor struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Group       string  `json:"group"`
}

// InputDescriptors returns metadata for all perception inputs.
// Order matches the vector built by the decision engine.
func InputDescriptors() []IODescriptor {
	return []IODescriptor{
		// Nearest food (indices 0-2)
		{ID: "food_dx", Label: "Food dX", Description: "X offset to nearest food / scan range", Min: -1, Max: 1, Group: "food"},
		{ID: "food_dy", Label: "Food dY", Description: "Y offset to nearest food / scan range", Min: -1, Max: 1, Group: "food"},
		{ID: "food_amount", Label: "Food Amt", Description: "Nutritional value of nearest food", Min: 0, Max: 1, Group: "food"},

		// Nearest agent and own failures (indices 3-6)
		{ID: "agent_dx", Label: "Agent dX", Description: "X offset to nearest agent / scan range", Min: -1, Max: 1, Group: "agent"},
		{ID: "agent_dy", Label: "Agent dY", Description: "Y offset to nearest agent / scan range", Min: -1, Max: 1, Group: "agent"},
		{ID: "agent_energy", Label: "Agent E", Description: "Energy of nearest agent", Min: 0, Max: 1, Group: "agent"},
		{ID: "fail", Label: "Fails", Description: "Own recent failure count", Min: 0, Max: 1, Group: "self"},

		// Agent density by quadrant (indices 7-10)
		{ID: "agents_ne", Label: "Agents NE", Description: "Agent density north-east", Min: 0, Max: 1, Group: "density"},
		{ID: "agents_nw", Label: "Agents NW", Description: "Agent density north-west", Min: 0, Max: 1, Group: "density"},
		{ID: "agents_se", Label: "Agents SE", Description: "Agent density south-east", Min: 0, Max: 1, Group: "density"},
		{ID: "agents_sw", Label: "Agents SW", Description: "Agent density south-west", Min: 0, Max: 1, Group: "density"},

		// Food density by quadrant (indices 11-14)
		{ID: "food_ne", Label: "Food NE", Description: "Food density north-east", Min: 0, Max: 1, Group: "density"},
		{ID: "food_nw", Label: "Food NW", Description: "Food density north-west", Min: 0, Max: 1, Group: "density"},
		{ID: "food_se", Label: "Food SE", Description: "Food density south-east", Min: 0, Max: 1, Group: "density"},
		{ID: "food_sw", Label: "Food SW", Description: "Food density south-west", Min: 0, Max: 1, Group: "density"},

		// Contacts (indices 15-16)
		{ID: "contact_count", Label: "Contacts", Description: "Agents in direct contact", Min: 0, Max: 1, Group: "contact"},
		{ID: "contact_energy", Label: "Contact E", Description: "Mean energy of contacts", Min: 0, Max: 1, Group: "contact"},
	}
}

// OutputDescriptors returns metadata for the action scores, in action order.
func OutputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "eat", Label: "Eat", Description: "Eat the nearest food in range", Min: -1, Max: 1, Group: "action"},
		{ID: "down", Label: "Down", Description: "Move one cell down", Min: -1, Max: 1, Group: "action"},
		{ID: "up", Label: "Up", Description: "Move one cell up", Min: -1, Max: 1, Group: "action"},
		{ID: "right", Label: "Right", Description: "Move one cell right", Min: -1, Max: 1, Group: "action"},
		{ID: "left", Label: "Left", Description: "Move one cell left", Min: -1, Max: 1, Group: "action"},
		{ID: "attack", Label: "Attack", Description: "Hit the nearest agent in range", Min: -1, Max: 1, Group: "action"},
		{ID: "reproduce", Label: "Mate", Description: "Reproduce with a contact", Min: -1, Max: 1, Group: "action"},
	}
}
