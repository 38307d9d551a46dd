/*
Package session serialises missions per robot and records them.

A robot can only follow one plan at a time. The Manager hands out a per-robot lock
(reference counted, optionally backed by a distributed locker for multiple replicas)
and persists every mission record through a ports.MissionStore.
*/
package session
