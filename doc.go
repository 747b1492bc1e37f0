// Copyright 2026 The anyrtos-go Authors
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package rtos implements a small priority-preemptive real-time kernel core:
// a scheduler, a tick-driven timer, and the synchronization primitives
// (event, mutex, semaphore, byte queue) that threads and interrupt service
// routines use to coordinate on a single logical CPU.
//
// A "thread" here is a goroutine that has registered itself with a
// [Scheduler] via [Scheduler.Add]; the scheduler guarantees that exactly one
// registered thread is ever logically running at a time, selected by
// strict priority with FIFO tie-breaking, exactly like the hardware
// scheduler this package is modeled on. There is no raw stack-switching:
// Go already gives every goroutine a safe, growable stack, so a "context
// switch" here is a handoff of a single-slot wake channel, and "masking
// interrupts" is a reentrant critical section guarding the scheduler's
// shared state. See DESIGN.md for the full rationale.
//
// Blocking primitives (Event, Mutex, Semaphore, Timer, Queue) may only be
// called from a thread registered with the scheduler they belong to. Their
// *ISR-suffixed counterparts are safe to call from any other goroutine
// standing in for an interrupt service routine; they never yield
// internally, returning a "yield suggested" boolean instead, matching the
// hardware contract this package emulates.
package rtos
