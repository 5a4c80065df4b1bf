// Package engine implements the bfe instruction interpreter.
//
// The engine owns one data Tape (memory) that persists across Execute calls,
// and for each call loads the program bytes into a second Tape whose cursor
// is the program cursor.
//
// ARCHITECTURE:
//
// Fetch-Dispatch-Advance Loop:
// 1. Program cursor is set to 0
// 2. Step() reads the byte under the program cursor and decodes it to an Op
// 3. Recognized ops are dispatched through a switch over the closed Op set;
//    any other byte is inert and skipped
// 4. The program cursor advances by one after every byte, including loop
//    ops; an op that needs to land on a specific byte leaves the cursor one
//    position before it. `/` and `?` take no such correction: the byte
//    they stop on is stepped over
// 5. Run() stops once the program cursor leaves [0, size)
//
// Loops:
// `[` pushes its own position when the guard cell is non-zero. When the
// guard is zero the body is skipped with a forward scan that counts nested
// brackets; there is no precomputed jump table. `]` pops a position and
// seeks one before it so the auto-advance re-lands on the `[` for another
// guard test.
//
// CONDITIONS:
//
// Nothing a program does is fatal by default. Every step yields an Outcome
// (OK, Skipped or OutOfRange) and, for the no-op and absent cases, a
// ConditionKind. Conditions are counted in the Report. WithStrict or
// WithFatal turn selected kinds into *RuntimeError results.
//
// The engine is single-threaded. The only blocking point is `,`, which waits
// on the Input device without timeout. Execute must not be called
// concurrently on the same Engine.
package engine
