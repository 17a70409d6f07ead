// Package telegram is the MTProto client adapter.
//
// # Overview
//
// The adapter owns at most one live client at a time, connected from a
// portable string session held in the sessions table or the environment.
// Login is a two-step exchange: SendLoginCode opens a fresh unauthorized
// client and parks it in a per-phone registry, ConfirmLoginCode consumes
// that pending client, signs in, and returns the captured string session.
// The pending handle is removed on the first confirm attempt whether it
// succeeds or not, so a second concurrent confirm for the same phone loses.
//
// File transfers resolve the destination chat either by username or by a
// numeric id matched against the account's dialog list, then upload with
// chunk-level progress reporting.
package telegram
