package auth

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/opcopilot/opcopilot/internal/domain"
)

// ErrInvalidCredentials is returned for an unknown login or a wrong password.
var ErrInvalidCredentials = errors.New("identifiant ou mot de passe incorrect")

// Credential pairs a user with a plaintext demo password.
type Credential struct {
	User     domain.User
	Password string
}

// DemoCredentials is the static account table of the demo deployment.
var DemoCredentials = []Credential{
	{
		User:     domain.User{Login: "aco1", DisplayName: "Marie Dupont", Role: domain.UserRoleACOSenior, Sector: "Grande-Terre", OperationCount: 2},
		Password: "password1",
	},
	{
		User:     domain.User{Login: "aco2", DisplayName: "Jean Baptiste", Role: domain.UserRoleACO, Sector: "Basse-Terre", OperationCount: 1},
		Password: "password2",
	},
	{
		User:     domain.User{Login: "aco3", DisplayName: "Sophie Laurent", Role: domain.UserRoleACO, Sector: "Centre", OperationCount: 1},
		Password: "password3",
	},
	{
		User:     domain.User{Login: "admin", DisplayName: "Administrateur SPIC", Role: domain.UserRoleAdmin, Sector: "Tous secteurs"},
		Password: "admin",
	},
}

type account struct {
	user domain.User
	hash string
}

// Directory authenticates against an in-memory credential table.
type Directory struct {
	accounts map[string]account
}

// NewDirectory hashes every credential once and indexes them by login.
func NewDirectory(creds []Credential, bcryptCost int) (*Directory, error) {
	d := &Directory{accounts: make(map[string]account, len(creds))}
	for _, c := range creds {
		hash, err := HashPassword(c.Password, bcryptCost)
		if err != nil {
			return nil, err
		}
		d.accounts[normalizeLogin(c.User.Login)] = account{user: c.User, hash: hash}
	}
	return d, nil
}

// Authenticate checks a login/password pair.
func (d *Directory) Authenticate(login, password string) (*domain.User, error) {
	acc, ok := d.accounts[normalizeLogin(login)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := ComparePassword(acc.hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := acc.user
	return &user, nil
}

// Lookup returns the user for a login.
func (d *Directory) Lookup(login string) (*domain.User, bool) {
	acc, ok := d.accounts[normalizeLogin(login)]
	if !ok {
		return nil, false
	}
	user := acc.user
	return &user, true
}

// Users lists every account sorted by login.
func (d *Directory) Users() []domain.User {
	users := make([]domain.User, 0, len(d.accounts))
	for _, acc := range d.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Login < users[j].Login })
	return users
}

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// HashPassword hashes a plaintext password. Costs outside bcrypt's range fall
// back to the default cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
