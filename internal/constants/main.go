package constants

import "github.com/xdoubleu/essentia/v2/pkg/contexttools"

const SessionContextKey = contexttools.Key("session")
