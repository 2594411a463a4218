package model

import (
	"fmt"
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type CraftItemRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
	RecipeID    string `json:"recipe_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1,max=100" default:"1"`
	StationID   string `json:"station_id,omitempty"`
}

type CraftOutput struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CraftResult reports one crafting attempt. A failed quality and an
// unsuccessful attempt always go together.
type CraftResult struct {
	CraftID          uuid.UUID     `json:"craft_id" validate:"required"`
	Success          bool          `json:"success"`
	Quality          CraftQuality  `json:"quality" validate:"required,enum"`
	Outputs          []CraftOutput `json:"outputs" validate:"dive"`
	Consumed         []CraftOutput `json:"consumed" validate:"dive"`
	ExperienceGained int           `json:"experience_gained" validate:"gte=0"`
	CraftedAt        time.Time     `json:"crafted_at"`
}

func (r *CraftResult) AddOutput(o CraftOutput) *CraftResult {
	schema.Append(&r.Outputs, o)
	return r
}

func (r *CraftResult) AddConsumed(o CraftOutput) *CraftResult {
	schema.Append(&r.Consumed, o)
	return r
}

func (r CraftResult) Invariants() []schema.Violation {
	if r.Quality == "" {
		return nil
	}
	failed := r.Quality == QualityFailed
	if failed == r.Success {
		return []schema.Violation{{
			Field:   "quality",
			Rule:    "quality_matches_outcome",
			Message: "quality failed must go with success=false and only then",
		}}
	}
	return nil
}

// DeliverableDefinition keeps item and quantity three-state: a patch may
// leave them alone, clear them or set them.
type DeliverableDefinition struct {
	DeliverableID string                  `json:"deliverable_id" validate:"required"`
	ItemID        schema.Nullable[string] `json:"itemId,omitzero"`
	Quantity      schema.Nullable[int]    `json:"quantity,omitzero" validate:"omitempty,min=1"`
	Description   string                  `json:"description,omitempty"`
}

// CraftingRecipeDetailed is a recipe as shown in the crafting catalog. A
// null station_requirement means any station will do.
type CraftingRecipeDetailed struct {
	RecipeID                string                  `json:"recipe_id" validate:"required"`
	Name                    string                  `json:"name" validate:"required,min=2,max=200"`
	Description             string                  `json:"description,omitempty"`
	Category                RecipeCategory          `json:"category" validate:"required,enum"`
	Tier                    RecipeTier              `json:"tier" validate:"required,enum"`
	RequiredSkill           string                  `json:"required_skill,omitempty"`
	RequiredSkillLevel      int                     `json:"required_skill_level" validate:"gte=0"`
	BaseCraftingTimeSeconds int                     `json:"base_crafting_time_seconds" validate:"gte=0"`
	BaseSuccessRate         *schema.Decimal         `json:"base_success_rate,omitempty" validate:"omitempty,dgte=0,dlte=1"`
	ComponentsCount         int                     `json:"components_count" validate:"gte=0"`
	Components              []CraftOutput           `json:"components" validate:"dive"`
	ResultItem              *CraftOutput            `json:"result_item,omitempty"`
	StationRequirement      schema.Nullable[string] `json:"station_requirement,omitzero" validate:"omitempty,min=2"`
	UnlockSource            string                  `json:"unlock_source,omitempty"`
}

func (r *CraftingRecipeDetailed) AddComponent(c CraftOutput) *CraftingRecipeDetailed {
	schema.Append(&r.Components, c)
	return r
}

func (r CraftingRecipeDetailed) Invariants() []schema.Violation {
	if r.ComponentsCount > 0 && r.ComponentsCount != len(r.Components) {
		return []schema.Violation{{
			Field:   "components_count",
			Rule:    "components_count_matches",
			Message: fmt.Sprintf("components_count %d but %d components listed", r.ComponentsCount, len(r.Components)),
		}}
	}
	return nil
}
