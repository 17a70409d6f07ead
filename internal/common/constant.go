package common

// SessionCookieName is the cookie used to carry the signed dashboard
// session token on privileged requests.
const SessionCookieName = "tgrelay_session"

// EnvSessionPlaceholder is the literal placeholder value shipped in example
// configs; a stored credential equal to it is treated as absent.
const EnvSessionPlaceholder = "your_string_session_here"

// CaptionMaxLen is the caption length limit imposed by Telegram.
const CaptionMaxLen = 1024
