// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies transport errors delivered through an
// exchange completion. The category is used to answer
// request.Error.Timeout, to label the outcome of failed exchanges in
// metrics, and to choose a log level.
//
// Package transient depends only on the standard library, so it can be
// imported by every other nttp package without cycles.
package transient
