package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	httpsSchemeConstant                = "https"
	pathSeparatorConstant              = "/"
	gitSuffixConstant                  = ".git"
	accessTokenUserConstant            = "x-access-token"
	remoteURLErrorTemplateConstant     = "%s: %s"
	requiredValueMessageConstant       = "value required"
	invalidRepositoryMessageConstant   = "expected owner/name"
	unknownProtocolMessageConstant     = "unsupported remote protocol"
	expectedRepositorySegmentsConstant = 2
)

// DefaultRemoteHost is the host used for owner/name repository identifiers.
const DefaultRemoteHost = "github.com"

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol    RemoteProtocol
	Host        string
	Owner       string
	Repository  string
	AccessToken string
}

// RemoteURLParseError indicates a remote description could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRepositoryIdentifier converts an owner/name identifier into an HTTPS RemoteURL on DefaultRemoteHost.
func ParseRepositoryIdentifier(repository string) (RemoteURL, error) {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: repository, Message: requiredValueMessageConstant}
	}
	segments := strings.Split(trimmedRepository, pathSeparatorConstant)
	if len(segments) != expectedRepositorySegmentsConstant {
		return RemoteURL{}, RemoteURLParseError{Input: repository, Message: invalidRepositoryMessageConstant}
	}
	repositoryName := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(segments[0]) == 0 || len(repositoryName) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: repository, Message: invalidRepositoryMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: DefaultRemoteHost, Owner: segments[0], Repository: repositoryName}, nil
}

// WithAccessToken returns a copy of the remote that authenticates with token.
func (remote RemoteURL) WithAccessToken(token string) RemoteURL {
	remote.AccessToken = strings.TrimSpace(token)
	return remote
}

// FormatRemoteURL creates a textual remote URL from a structured representation.
// Remotes carrying an access token embed it as x-access-token credentials.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return "", RemoteURLParseError{Input: remote.Host, Message: requiredValueMessageConstant}
	}
	if len(remote.Owner) == 0 || len(remote.Repository) == 0 {
		return "", RemoteURLParseError{Input: remote.Owner + pathSeparatorConstant + remote.Repository, Message: invalidRepositoryMessageConstant}
	}
	if remote.Protocol != RemoteProtocolHTTPS {
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}

	formatted := url.URL{
		Scheme: httpsSchemeConstant,
		Host:   remote.Host,
		Path:   pathSeparatorConstant + remote.Owner + pathSeparatorConstant + remote.Repository + gitSuffixConstant,
	}
	if len(remote.AccessToken) > 0 {
		formatted.User = url.UserPassword(accessTokenUserConstant, remote.AccessToken)
	}
	return formatted.String(), nil
}

// AuthenticatedRemoteURL formats https://x-access-token:<token>@github.com/<owner>/<name>.git.
func AuthenticatedRemoteURL(repository string, token string) (string, error) {
	remote, parseError := ParseRepositoryIdentifier(repository)
	if parseError != nil {
		return "", parseError
	}
	return FormatRemoteURL(remote.WithAccessToken(token))
}
