// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package source resolves binary inputs of the image build into memory.
//
// A [Resolver] either downloads a file ([Download]) or reads it from a
// filesystem ([LocalFile]). [ResolveAll] resolves multiple sources
// concurrently.
package source
