package digest

// MailerRow is one active (recipient, credential, account) linkage.
type MailerRow struct {
	Email           string
	InstitutionName string
	AccessToken     string
	AccountID       string
}

// CredentialGroup collects the account ids reachable through one credential.
type CredentialGroup struct {
	AccessToken     string
	InstitutionName string
	AccountIDs      []string
}

// RecipientGroup is everything one recipient's digest covers.
type RecipientGroup struct {
	Email       string
	Credentials []*CredentialGroup
}

// Group nests rows by recipient then credential in a single pass.
// Recipients and credentials keep first-seen order and duplicate account ids are kept.
func Group(rows []MailerRow) []*RecipientGroup {
	groups := make([]*RecipientGroup, 0)
	byEmail := make(map[string]*RecipientGroup)
	byCredential := make(map[string]map[string]*CredentialGroup)

	for _, row := range rows {
		rg, ok := byEmail[row.Email]
		if !ok {
			rg = &RecipientGroup{Email: row.Email}
			byEmail[row.Email] = rg
			byCredential[row.Email] = make(map[string]*CredentialGroup)
			groups = append(groups, rg)
		}

		cg, ok := byCredential[row.Email][row.AccessToken]
		if !ok {
			cg = &CredentialGroup{AccessToken: row.AccessToken, InstitutionName: row.InstitutionName}
			byCredential[row.Email][row.AccessToken] = cg
			rg.Credentials = append(rg.Credentials, cg)
		}
		cg.AccountIDs = append(cg.AccountIDs, row.AccountID)
	}

	return groups
}
