// Package border frames rendered worksheet pages as four bordered cards.
//
// Every page bitmap is split at its midpoints into four quadrants. Each
// quadrant becomes a card: the matching corner tiles of a decorative
// [Template] are resized to fit a quarter of the card and pasted at its
// corners, then the quadrant's own content, shrunk by the configured
// [Margins], is pasted on top. The four cards are put back where their
// quadrants came from, so a page keeps its exact pixel size.
//
// When a page has odd dimensions the left and top quadrants take the floor
// of the half and the right and bottom quadrants take the remainder.
//
// [Engine] runs this for every page of a rendered PDF in parallel, writes
// each page as a single-page PDF and merges them in page order into the
// final document. The final file is renamed into place only after the merge
// succeeds.
package border
