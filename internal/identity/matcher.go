package identity

import "github.com/desertthunder/roster/internal/models"

// Identity pairs the account and roster member that refer to the same person.
// Either side may be nil when only one exists.
type Identity struct {
	Account *models.Account
	Member  *models.RosterMember
}

// Found reports whether either side resolved.
func (i Identity) Found() bool { return i.Account != nil || i.Member != nil }

// Handle returns the canonical handle, preferring the account's.
func (i Identity) Handle() string {
	if i.Account != nil && i.Account.Handle != "" {
		return i.Account.Handle
	}
	if i.Member != nil {
		return i.Member.Handle
	}
	return ""
}

// Matcher resolves identifiers against one view of the accounts and members collections.
//
// Indexes keep the first record seen for each key, so with duplicates present the
// lowest sequence wins, matching how collapse chooses survivors.
type Matcher struct {
	accounts []*models.Account
	members  []*models.RosterMember

	accountsByHandle map[string]*models.Account
	accountsByName   map[string]*models.Account
	accountsByID     map[string]*models.Account
	membersByHandle  map[string]*models.RosterMember
	membersByName    map[string]*models.RosterMember
	membersByID      map[string]*models.RosterMember
}

// NewMatcher indexes the given records. Nil entries are ignored.
func NewMatcher(accounts []*models.Account, members []*models.RosterMember) *Matcher {
	m := &Matcher{
		accountsByHandle: make(map[string]*models.Account),
		accountsByName:   make(map[string]*models.Account),
		accountsByID:     make(map[string]*models.Account),
		membersByHandle:  make(map[string]*models.RosterMember),
		membersByName:    make(map[string]*models.RosterMember),
		membersByID:      make(map[string]*models.RosterMember),
	}

	for _, a := range accounts {
		if a == nil {
			continue
		}
		m.accounts = append(m.accounts, a)
		putFirst(m.accountsByHandle, NormalizeHandle(a.Handle), a)
		putFirst(m.accountsByName, NormalizeName(a.DisplayName), a)
		putFirst(m.accountsByID, a.ID(), a)
	}

	for _, mem := range members {
		if mem == nil {
			continue
		}
		m.members = append(m.members, mem)
		putFirst(m.membersByHandle, NormalizeHandle(mem.Handle), mem)
		putFirst(m.membersByName, NormalizeName(mem.DisplayName), mem)
		putFirst(m.membersByID, mem.ID(), mem)
	}

	return m
}

func putFirst[T any](index map[string]T, key string, v T) {
	if key == "" {
		return
	}
	if _, ok := index[key]; !ok {
		index[key] = v
	}
}

// Resolve finds the person a candidate refers to. Precedence is handle, then
// normalized display name, then raw record id. A candidate that matches nothing
// returns false; that is not an error.
func (m *Matcher) Resolve(candidate string) (Identity, bool) {
	if h := NormalizeHandle(candidate); h != "" {
		acct := m.accountsByHandle[h]
		mem := m.membersByHandle[h]
		if acct != nil || mem != nil {
			return m.complete(Identity{Account: acct, Member: mem}), true
		}
	}

	if n := NormalizeName(candidate); n != "" {
		acct := m.accountsByName[n]
		mem := m.membersByName[n]
		if acct != nil || mem != nil {
			return m.complete(Identity{Account: acct, Member: mem}), true
		}
	}

	if acct, ok := m.accountsByID[candidate]; ok {
		return m.complete(Identity{Account: acct}), true
	}
	if mem, ok := m.membersByID[candidate]; ok {
		return m.complete(Identity{Member: mem}), true
	}

	return Identity{}, false
}

// complete fills in the missing side of a partial identity.
func (m *Matcher) complete(id Identity) Identity {
	if id.Account != nil && id.Member == nil {
		id.Member = m.MemberFor(id.Account)
	}
	if id.Member != nil && id.Account == nil {
		id.Account = m.AccountFor(id.Member)
	}
	return id
}

// AccountByName returns the first account whose display name matches name after normalization.
func (m *Matcher) AccountByName(name string) (*models.Account, bool) {
	a, ok := m.accountsByName[NormalizeName(name)]
	return a, ok
}

// AccountByHandle returns the first account whose handle matches modulo case and "@".
func (m *Matcher) AccountByHandle(handle string) (*models.Account, bool) {
	a, ok := m.accountsByHandle[NormalizeHandle(handle)]
	return a, ok
}

// MemberByID looks a member up by raw record id.
func (m *Matcher) MemberByID(id string) (*models.RosterMember, bool) {
	mem, ok := m.membersByID[id]
	return mem, ok
}

// MemberFor returns the roster member paired with an account: by handle, then by name.
func (m *Matcher) MemberFor(a *models.Account) *models.RosterMember {
	if a == nil {
		return nil
	}
	if mem, ok := m.membersByHandle[NormalizeHandle(a.Handle)]; ok {
		return mem
	}
	return m.membersByName[NormalizeName(a.DisplayName)]
}

// AccountFor returns the account paired with a roster member: by handle, then by name.
func (m *Matcher) AccountFor(mem *models.RosterMember) *models.Account {
	if mem == nil {
		return nil
	}
	if a, ok := m.accountsByHandle[NormalizeHandle(mem.Handle)]; ok {
		return a
	}
	return m.accountsByName[NormalizeName(mem.DisplayName)]
}

// Members returns the indexed members in the order given.
func (m *Matcher) Members() []*models.RosterMember { return m.members }

// Accounts returns the indexed accounts in the order given.
func (m *Matcher) Accounts() []*models.Account { return m.accounts }
