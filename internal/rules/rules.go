// Package rules holds the builtin rule set. Constructors return fresh
// instances so concurrent engine runs never share visitor state.
package rules

import "argus/internal/rule"

// mustBuild panics on schema construction errors. Builtin schemas are
// static, so a failure here is a programming bug, not user input.
func mustBuild(r *rule.Rule, err error) *rule.Rule {
	if err != nil {
		panic("rules: " + err.Error())
	}
	return r
}

// All returns one fresh instance of every builtin rule.
func All() []*rule.Rule {
	return []*rule.Rule{
		NoUnusedPrivate(),
		NoDuplicateImports(),
		NoFixme(),
		NoUndefinedQualified(),
		NoUnusedExports(),
		NoUnusedDeps(),
		ReadmeTitle(),
	}
}

// Names lists the builtin rule names in All's order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name()
	}
	return names
}
