// Copyright 2020 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package bout reduces the output of a changepoint clustering step into
  contiguous bouts.

  A clustering step labels each detected peak of a signal with a cluster
  number.  Reduce finds the peaks at which the label changes and pairs
  consecutive boundaries into bouts, each expressed as a [start, end] range
  of sample positions (both ends closed).  The last boundary is always
  pinned to the final peak, so the last bout runs to the end of the peak
  sequence.

  For example, labels 0 0 1 1 2 2 at positions 10..15 produce boundaries at
  peaks 1, 3 and 5 and the bouts [11, 13] and [14, 15].
*/
package bout
