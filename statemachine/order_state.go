package statemachine

import (
	"errors"
	"strings"

	"peer-delivery-api/models"
)

// Actor identifies who performs a transition
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorPartner  Actor = "partner"
	ActorAdmin    Actor = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// A partner claims a pending order
	{From: models.StatusPending, To: models.StatusAccepted, Actor: ActorPartner},
	// The assigned partner moves it along
	{From: models.StatusAccepted, To: models.StatusPickedUp, Actor: ActorPartner},
	{From: models.StatusPickedUp, To: models.StatusOnTheWay, Actor: ActorPartner},
	{From: models.StatusPickedUp, To: models.StatusDelivered, Actor: ActorPartner},
	{From: models.StatusOnTheWay, To: models.StatusDelivered, Actor: ActorPartner},
}

// cancellers may move any non-terminal order to CANCELLED
var cancellers = []Actor{ActorCustomer, ActorPartner, ActorAdmin}

func init() {
	for _, from := range models.AllStatuses {
		if IsTerminal(from) {
			continue
		}
		for _, a := range cancellers {
			validTransitions = append(validTransitions, Transition{From: from, To: models.StatusCancelled, Actor: a})
		}
	}
	for _, t := range validTransitions {
		transitionMap[transitionKey{t.From, t.To, t.Actor}] = true
	}
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = map[transitionKey]bool{}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.OrderStatus) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// Sources returns every state from which actor may move an order to `to`.
// The lifecycle uses it as the status guard of its conditional updates.
func Sources(to models.OrderStatus, actor Actor) []models.OrderStatus {
	var froms []models.OrderStatus
	for _, t := range validTransitions {
		if t.To == to && t.Actor == actor {
			froms = append(froms, t.From)
		}
	}
	return froms
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
