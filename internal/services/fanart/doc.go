// Package fanart fetches movie artwork from the fanart.tv API.
package fanart
