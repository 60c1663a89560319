// Package trust evaluates hierarchical verification chains.
//
// A verification for subject S on topic /a/b/c is trusted when its issuer I
// itself holds a trusted verification for /a/b, and so on up to the root
// topic, which must be issued by the trust anchor. Problems along the way are
// reported as warnings instead of errors; only ledger failures and
// cancellation are returned as errors.
package trust

import (
	"context"
	"fmt"
	"time"

	"Veritas/internal/claims"
	"Veritas/internal/identity"
	"Veritas/internal/logger"
	"Veritas/internal/topic"
)

// Computed is the derived trust state of one subject and topic.
type Computed struct {
	Subject                 identity.Identity `json:"subject"`
	Topic                   topic.Topic       `json:"topic"`
	Status                  claims.Status     `json:"status"`
	Warnings                Warnings          `json:"warnings"`
	Chain                   []claims.Entry    `json:"chain"` // leaf first
	DisableSubVerifications bool              `json:"disableSubVerifications"`
}

// Blocking returns the warnings not listed in allowed.
func (c *Computed) Blocking(allowed ...Warning) Warnings {
	var out Warnings
	for _, w := range c.Warnings {
		if !Warnings(allowed).Has(w) {
			out.Add(w)
		}
	}
	return out
}

// Trusted reports whether the verification exists, is not rejected and
// carries no warnings beyond the allowed ones.
func (c *Computed) Trusted(allowed ...Warning) bool {
	if c.Status == claims.StatusMissing || c.Status == claims.StatusRejected {
		return false
	}
	return len(c.Blocking(allowed...)) == 0
}

// Evaluator computes verifications against a claim ledger.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	ledger claims.Ledger     // ledger supplies verification entries
	anchor identity.Identity // anchor must issue root topics
	now    func() time.Time  // now decides expiration
}

// New creates an evaluator. anchor is the identity whose root-topic
// verifications are trusted without a parent.
func New(ledger claims.Ledger, anchor identity.Identity) *Evaluator {
	return &Evaluator{ledger: ledger, anchor: anchor, now: time.Now}
}

// Anchor returns the configured trust anchor.
func (e *Evaluator) Anchor() identity.Identity {
	return e.anchor
}

// Evaluate computes the verification of subject on t.
func (e *Evaluator) Evaluate(ctx context.Context, subject identity.Identity, t topic.Topic) (*Computed, error) {
	return e.evaluate(ctx, subject, t, newMemo())
}

// EvaluateAll computes several topics for one subject. Ledger lookups are
// shared between the topics for the duration of the call.
func (e *Evaluator) EvaluateAll(ctx context.Context, subject identity.Identity, topics []topic.Topic) ([]*Computed, error) {
	m := newMemo()
	out := make([]*Computed, 0, len(topics))

	for _, t := range topics {
		c, err := e.evaluate(ctx, subject, t, m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, nil
}

// level is one step of the walk from leaf to root.
type level struct {
	subject identity.Identity
	topic   topic.Topic
	entry   *claims.Entry // entry is nil when the ledger has none
}

// evaluate walks the chain leaf to root, then folds the levels root to leaf.
// The walk is bounded by the topic depth because every step drops a segment.
func (e *Evaluator) evaluate(ctx context.Context, subject identity.Identity, t topic.Topic, m *memo) (*Computed, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("evaluate: empty topic")
	}

	start := time.Now()
	levels := make([]level, 0, t.Depth())

	subj, cur := subject, t
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := m.get(ctx, e.ledger, subj, cur)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s for %s:\n%w", cur, subj, err)
		}

		lv := level{subject: subj, topic: cur}
		if len(entries) == 0 {
			levels = append(levels, lv)
			break
		}

		// First entry wins; the ledger returns them in creation order
		lv.entry = &entries[0]
		levels = append(levels, lv)

		parent, ok := cur.Parent()
		if !ok {
			break
		}

		subj, cur = lv.entry.Issuer, parent
	}

	now := e.now()

	var result *Computed
	for i := len(levels) - 1; i >= 0; i-- {
		result = e.compute(levels[i], result, now)
	}

	logger.Debug("verification evaluated",
		"subject", subject.String(),
		"topic", t.String(),
		"status", result.Status.String(),
		"warnings", len(result.Warnings),
		"depth", len(levels),
		logger.Timed(start),
	)

	return result, nil
}

// compute derives one level from its entry and the already computed parent level.
// parent is nil for the deepest level of the walk.
func (e *Evaluator) compute(lv level, parent *Computed, now time.Time) *Computed {
	c := &Computed{
		Subject: lv.subject,
		Topic:   lv.topic,
		Chain:   []claims.Entry{},
	}

	if lv.entry == nil {
		c.Status = claims.StatusMissing
		c.Warnings.Add(WarnMissing)
		return c
	}

	entry := lv.entry
	c.Status = entry.Status

	if entry.Status == claims.StatusIssued {
		c.Warnings.Add(WarnIssued)
	}

	if entry.Expired(now) {
		c.Warnings.Add(WarnExpired)
	}

	if entry.Issuer == lv.subject {
		c.Warnings.Add(WarnSelfIssued)
	}

	c.Chain = append(c.Chain, *entry)

	if lv.topic.IsRoot() {
		if entry.Issuer != e.anchor {
			c.Warnings.Add(WarnNotEnsRootOwner)
		}
		return c
	}

	if parent == nil {
		return c
	}

	switch {
	case parent.Status == claims.StatusMissing:
		c.Warnings.Add(WarnParentMissing)
	case parent.Warnings.HasAny(untrustedParent...) || !e.trustedTerminal(parent):
		c.Warnings.Add(WarnParentUntrusted)
	}

	if blocksDelegation(parent) {
		c.Warnings.Add(WarnDisableSubVerifications)
		c.DisableSubVerifications = true
	}

	c.Chain = append(c.Chain, parent.Chain...)

	return c
}

// trustedTerminal reports whether a parent level may vouch for children:
// it is confirmed, or issued directly by the trust anchor.
func (e *Evaluator) trustedTerminal(p *Computed) bool {
	switch p.Status {
	case claims.StatusConfirmed:
		return true
	case claims.StatusIssued:
		return len(p.Chain) > 0 && p.Chain[0].Issuer == e.anchor
	default:
		return false
	}
}

// blocksDelegation reports whether the parent entry, or any ancestor above
// it, disabled sub verifications.
func blocksDelegation(p *Computed) bool {
	if p.DisableSubVerifications {
		return true
	}
	return len(p.Chain) > 0 && p.Chain[0].DisableSubVerifications
}
