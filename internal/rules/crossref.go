package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/prisonrp/ruleswiki/internal/models"
	"github.com/prisonrp/ruleswiki/internal/validation"
)

var (
	// ErrSelfReference is returned when a rule is cross-referenced to itself
	ErrSelfReference = errors.New("a rule cannot reference itself")
	// ErrDuplicateReference is returned for an identical (source, target, type) edge
	ErrDuplicateReference = errors.New("an identical cross-reference already exists")
	// ErrReferenceNotFound is returned for an unknown cross-reference id
	ErrReferenceNotFound = errors.New("cross-reference not found")
)

// Direction of an edge relative to the queried rule.
const (
	DirectionForward = "forward"
	DirectionReverse = "reverse"
)

// ReferenceInput carries the writable cross-reference fields.
type ReferenceInput struct {
	TargetRuleID     int64  `json:"target_rule_id"`
	ReferenceType    string `json:"reference_type"`
	ReferenceContext string `json:"reference_context"`
	IsBidirectional  bool   `json:"is_bidirectional"`
}

// ReferenceView is one edge as seen from a particular rule.
type ReferenceView struct {
	ID               int64  `json:"id"`
	RuleID           int64  `json:"rule_id"`
	FullCode         string `json:"full_code"`
	Title            string `json:"title"`
	ReferenceType    string `json:"reference_type"`
	ReferenceContext string `json:"reference_context"`
	Direction        string `json:"direction"`
	IsBidirectional  bool   `json:"is_bidirectional"`
}

// AddCrossReference creates a typed edge between two rules. Self-references
// and duplicate (source, target, type) edges are rejected. Bidirectional
// edges are stored once and surfaced from both endpoints.
func (s *Service) AddCrossReference(ctx context.Context, sourceID int64, in ReferenceInput, actor *models.StaffUser) (*models.CrossReference, error) {
	if sourceID == in.TargetRuleID {
		return nil, ErrSelfReference
	}
	if !models.ValidReferenceType(in.ReferenceType) {
		return nil, validation.Errorf("unknown reference type: %q", in.ReferenceType)
	}

	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.Get(ctx, in.TargetRuleID)
	if err != nil {
		return nil, err
	}

	exists, err := s.refs.Exists(ctx, sourceID, in.TargetRuleID, in.ReferenceType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReference
	}

	ref := &models.CrossReference{
		SourceRuleID:     sourceID,
		TargetRuleID:     in.TargetRuleID,
		ReferenceType:    in.ReferenceType,
		ReferenceContext: in.ReferenceContext,
		IsBidirectional:  in.IsBidirectional,
	}
	if err := s.refs.Create(ctx, ref); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionCreate, "cross_reference", ref.ID,
		fmt.Sprintf("Linked %s -> %s (%s)", source.FullCode, target.FullCode, ref.ReferenceType))
	return ref, nil
}

// GetCrossReferences returns every edge visible from a rule, grouped by
// reference type and annotated with the direction relative to the rule.
// Reverse entries appear only for edges stored as bidirectional.
func (s *Service) GetCrossReferences(ctx context.Context, ruleID int64) (map[string][]ReferenceView, error) {
	if _, err := s.Get(ctx, ruleID); err != nil {
		return nil, err
	}

	outgoing, err := s.refs.ListOutgoing(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.refs.ListIncomingBidirectional(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]ReferenceView)
	for _, ref := range outgoing {
		view, err := s.referenceView(ctx, ref, ref.TargetRuleID, DirectionForward)
		if err != nil {
			return nil, err
		}
		grouped[ref.ReferenceType] = append(grouped[ref.ReferenceType], view)
	}
	for _, ref := range incoming {
		view, err := s.referenceView(ctx, ref, ref.SourceRuleID, DirectionReverse)
		if err != nil {
			return nil, err
		}
		grouped[ref.ReferenceType] = append(grouped[ref.ReferenceType], view)
	}
	return grouped, nil
}

func (s *Service) referenceView(ctx context.Context, ref *models.CrossReference, otherID int64, direction string) (ReferenceView, error) {
	view := ReferenceView{
		ID:               ref.ID,
		RuleID:           otherID,
		ReferenceType:    ref.ReferenceType,
		ReferenceContext: ref.ReferenceContext,
		Direction:        direction,
		IsBidirectional:  ref.IsBidirectional,
	}
	other, err := s.rules.GetByID(ctx, otherID)
	if err != nil {
		return view, err
	}
	if other != nil {
		view.FullCode = other.FullCode
		view.Title = other.Title
	}
	return view, nil
}

// RemoveCrossReference hard-deletes an edge.
func (s *Service) RemoveCrossReference(ctx context.Context, refID int64, actor *models.StaffUser) error {
	ref, err := s.refs.GetByID(ctx, refID)
	if err != nil {
		return err
	}
	if ref == nil {
		return ErrReferenceNotFound
	}

	if err := s.refs.Delete(ctx, refID); err != nil {
		return err
	}

	s.recorder.Record(ctx, actor.ID, models.ActionDelete, "cross_reference", refID,
		fmt.Sprintf("Removed cross-reference %d -> %d (%s)", ref.SourceRuleID, ref.TargetRuleID, ref.ReferenceType))
	return nil
}
