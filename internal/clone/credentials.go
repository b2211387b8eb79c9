package clone

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// CredentialType is a bit set of credential kinds a transport accepts.
type CredentialType uint

const (
	CredentialUserPassPlaintext CredentialType = 1 << iota
	CredentialSSHKey
)

func (t CredentialType) String() string {
	var parts []string
	if t&CredentialUserPassPlaintext != 0 {
		parts = append(parts, "userpass_plaintext")
	}
	if t&CredentialSSHKey != 0 {
		parts = append(parts, "ssh_key")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Credential is what a CredentialAcquire callback hands back.
type Credential struct {
	Type CredentialType

	Username string
	Password string

	// PrivateKey is the path of a PEM encoded key; Passphrase unlocks it.
	PrivateKey string
	Passphrase string
}

func UserPassPlaintext(username, password string) Credential {
	return Credential{Type: CredentialUserPassPlaintext, Username: username, Password: password}
}

func SSHKeyFromFile(username, privateKey, passphrase string) Credential {
	return Credential{Type: CredentialSSHKey, Username: username, PrivateKey: privateKey, Passphrase: passphrase}
}

// authMethod converts c into a go-git transport.AuthMethod, checking it is one
// of the allowed kinds.
func (c Credential) authMethod(allowed CredentialType) (transport.AuthMethod, error) {
	if c.Type&allowed == 0 || c.Type&(c.Type-1) != 0 {
		return nil, fmt.Errorf("credential type %s not allowed (want %s)", c.Type, allowed)
	}
	switch c.Type {
	case CredentialUserPassPlaintext:
		return &http.BasicAuth{Username: c.Username, Password: c.Password}, nil
	case CredentialSSHKey:
		user := c.Username
		if user == "" {
			user = "git"
		}
		auth, err := ssh.NewPublicKeysFromFile(user, c.PrivateKey, c.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load ssh key %s: %w", c.PrivateKey, err)
		}
		return auth, nil
	}
	return nil, fmt.Errorf("unsupported credential type %s", c.Type)
}

// allowedCredentials reports what the transport of protocol can use.
func allowedCredentials(protocol string) CredentialType {
	switch protocol {
	case "http", "https":
		return CredentialUserPassPlaintext
	case "ssh":
		return CredentialSSHKey
	}
	return 0
}
