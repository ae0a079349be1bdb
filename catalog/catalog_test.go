package catalog

import (
	"sort"
	"strings"
	"testing"

	"github.com/hupe1980/agentforge/core"
)

func TestCatalog_CoversEveryArchetype(t *testing.T) {
	c := New()

	for _, archetype := range core.Archetypes() {
		caps := c.CapabilitiesOf(archetype)
		if len(caps) == 0 {
			t.Errorf("archetype %s has no capabilities", archetype)
		}
		if !sort.StringsAreSorted(caps) {
			t.Errorf("capabilities for %s are not sorted: %v", archetype, caps)
		}
	}
}

func TestCatalog_UnknownArchetypeIsEmpty(t *testing.T) {
	c := New()

	caps := c.CapabilitiesOf(core.Archetype("time_traveler"))
	if caps == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(caps) != 0 {
		t.Fatalf("expected no capabilities, got %v", caps)
	}
}

func TestCatalog_CopiesAreIsolated(t *testing.T) {
	c := New()

	caps := c.CapabilitiesOf(core.ArchetypeDomainExpert)
	caps[0] = "tampered"

	again := c.CapabilitiesOf(core.ArchetypeDomainExpert)
	if again[0] == "tampered" {
		t.Fatal("CapabilitiesOf returned a shared slice")
	}

	all := c.All()
	all[core.ArchetypeDomainExpert][0] = "tampered"
	if c.CapabilitiesOf(core.ArchetypeDomainExpert)[0] == "tampered" {
		t.Fatal("All returned a shared slice")
	}
}

func TestCatalog_Has(t *testing.T) {
	c := New()

	if !c.Has(core.ArchetypeLegalCompliance, "legal_review") {
		t.Error("expected legal_compliance to declare legal_review")
	}
	if c.Has(core.ArchetypeLegalCompliance, "storytelling") {
		t.Error("did not expect legal_compliance to declare storytelling")
	}
	if c.Has(core.Archetype("time_traveler"), "anything") {
		t.Error("unknown archetype should declare nothing")
	}
}

func TestCatalog_PromptOverview(t *testing.T) {
	c := New()

	overview := c.PromptOverview()
	for _, archetype := range core.Archetypes() {
		if !strings.Contains(overview, "- "+archetype.String()+": ") {
			t.Errorf("overview is missing archetype %s", archetype)
		}
	}
	if strings.Contains(overview, "time_traveler") {
		t.Error("overview contains an archetype outside the closed set")
	}
	lines := strings.Count(overview, "\n")
	if lines != core.ArchetypeCount() {
		t.Errorf("expected %d lines, got %d", core.ArchetypeCount(), lines)
	}
}
