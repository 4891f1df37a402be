package syntax

import "fmt"

// CheckParameters enforces the §3 parameter invariants in order, aborting
// on the first violation with a single human-readable message, as spec.md
// §4.2 "Validation" requires. It is also Invariant 4 of §8: "the
// pre-parser invariants of §3 hold iff check_parameters() returns Ok."
func CheckParameters(s Syntax) error {
	dests := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		d := p.ResolvedDest()
		if dests[d] {
			return fmt.Errorf("identifier %s is defined more than once", d)
		}
		dests[d] = true
	}
	groupNames := make(map[string]bool, len(s.Groups))
	for _, g := range s.Groups {
		if dests[g.Name] || groupNames[g.Name] {
			return fmt.Errorf("identifier %s is defined more than once", g.Name)
		}
		groupNames[g.Name] = true
	}

	identifiers := make(map[string]bool, len(dests)+len(groupNames))
	for d := range dests {
		identifiers[d] = true
	}
	for g := range groupNames {
		identifiers[g] = true
	}

	checkRefs := func(owner string, refs []string) error {
		for _, ref := range refs {
			if !identifiers[ref] {
				return fmt.Errorf("%s references unknown identifier %s", owner, ref)
			}
		}
		return nil
	}

	for _, p := range s.Parameters {
		d := p.ResolvedDest()
		for _, name := range p.Names {
			if name == "-h" || name == "--help" {
				return fmt.Errorf("parameter %s uses reserved name %s", d, name)
			}
		}
		if err := checkRefs(d, p.Requires); err != nil {
			return err
		}
		if err := checkRefs(d, p.ConflictsWith); err != nil {
			return err
		}
		if err := checkRefs(d, p.RequiredWithout); err != nil {
			return err
		}
		if err := checkRefs(d, p.RequiredWithoutAll); err != nil {
			return err
		}
		for k := range p.RequiredIfEq {
			if !identifiers[k] {
				return fmt.Errorf("%s references unknown identifier %s", d, k)
			}
		}
		for k := range p.RequiredIfEqAll {
			if !identifiers[k] {
				return fmt.Errorf("%s references unknown identifier %s", d, k)
			}
		}
	}
	for _, g := range s.Groups {
		if err := checkRefs(g.Name, g.Requires); err != nil {
			return err
		}
		if err := checkRefs(g.Name, g.ConflictsWith); err != nil {
			return err
		}
		for _, ref := range g.Parameters {
			if !identifiers[ref] {
				return fmt.Errorf("group %s references unknown identifier %s", g.Name, ref)
			}
		}
	}

	leftoversCount := 0
	var positionals []Parameter
	for _, p := range s.Parameters {
		if p.Leftovers {
			leftoversCount++
		}
		if p.IsPositional() {
			positionals = append(positionals, p)
		}
	}
	if leftoversCount > 1 {
		return fmt.Errorf("at most one leftovers parameter is allowed")
	}
	if leftoversCount == 1 {
		last := positionals[len(positionals)-1]
		if !last.Leftovers {
			return fmt.Errorf("leftovers parameter must be the last positional")
		}
	}

	for _, p := range s.Parameters {
		d := p.ResolvedDest()
		if p.Last && p.IsPositional() == false {
			return fmt.Errorf("%s: last is only valid on positional parameters", d)
		}
		if p.ArgType.Kind == TypeCounter {
			if p.IsPositional() {
				return fmt.Errorf("%s: counter parameters cannot be positional", d)
			}
			if p.NumValues.Kind != NumAny {
				return fmt.Errorf("%s: counter parameters cannot declare num_values", d)
			}
		}
		if p.AllowHyphenValues {
			if p.ArgType.isFlagLike() {
				return fmt.Errorf("%s: allow_hyphen_values requires a value-taking parameter", d)
			}
		}
		if !p.IsPositional() && p.ArgType.isFlagLike() && p.NumValues.Kind != NumAny {
			return fmt.Errorf("%s: flags cannot declare num_values", d)
		}
		if p.IsPositional() {
			if p.NumValues.Kind == NumExactly && p.NumValues.Lo == 0 {
				return fmt.Errorf("%s: positional cannot have num_values=0", d)
			}
			if p.NumValues.Kind == NumBetween && p.NumValues.Lo == 0 && p.NumValues.Hi == 0 {
				return fmt.Errorf("%s: positional cannot have num_values=0", d)
			}
		}
	}

	// Positional ordering invariants: (8) a positional with num_values>1
	// must be followed only by required or last positionals; (9) a
	// required positional must not follow a non-required one.
	seenOptional := false
	for i, p := range positionals {
		if p.Required {
			if seenOptional {
				return fmt.Errorf("%s: required positional must not follow a non-required positional", p.ResolvedDest())
			}
		} else {
			seenOptional = true
		}

		if p.NumValues.IsMany() || p.NumValues.Max() > 1 {
			for _, later := range positionals[i+1:] {
				if !later.Required && !later.Last {
					return fmt.Errorf("%s: a multi-value positional must be followed only by required or last positionals", p.ResolvedDest())
				}
			}
		}
	}

	return nil
}
