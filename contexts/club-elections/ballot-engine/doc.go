// Package ballotengine implements the ballot integrity and tally engine inside
// the club-elections context.
//
// The module owns the candidate roster (promotion, disqualification,
// withdrawal with dense ballot renumbering), vote admission with one vote per
// voter and position, receipt verification, and tally reads computed from
// committed ledger state. Roster and vote events leave through a transactional
// outbox relayed by workers. Business rules stay in the application and domain
// layers; storage and delivery sit behind ports and adapters.
package ballotengine
