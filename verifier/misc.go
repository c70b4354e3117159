package verifier

// checkMisc evaluates the heuristics that need no network access.
func checkMisc(sx *SyntaxDetails) MiscDetails {
	return MiscDetails{
		IsDisposable:  isDisposableDomain(sx.Domain),
		IsRoleAccount: isRoleAccount(sx.LocalPart),
	}
}
