package sqltype

// Bool is the SQL BOOLEAN type.
type Bool struct{ notNullTag }

func (Bool) Kind() Kind { return KindBool }

// SmallInt is a 16-bit signed integer.
type SmallInt struct{ notNullTag }

func (SmallInt) Kind() Kind { return KindSmallInt }

// Integer is a 32-bit signed integer.
type Integer struct{ notNullTag }

func (Integer) Kind() Kind { return KindInteger }

// BigInt is a 64-bit signed integer.
type BigInt struct{ notNullTag }

func (BigInt) Kind() Kind { return KindBigInt }

// Float is a single precision float.
type Float struct{ notNullTag }

func (Float) Kind() Kind { return KindFloat }

// Double is a double precision float.
type Double struct{ notNullTag }

func (Double) Kind() Kind { return KindDouble }

// Numeric is an arbitrary precision decimal.
type Numeric struct{ notNullTag }

func (Numeric) Kind() Kind { return KindNumeric }

// Text is a variable length character string.
type Text struct{ notNullTag }

func (Text) Kind() Kind { return KindText }

// Binary is a variable length byte string.
type Binary struct{ notNullTag }

func (Binary) Kind() Kind { return KindBinary }

// Date is a calendar date without time of day.
type Date struct{ notNullTag }

func (Date) Kind() Kind { return KindDate }

// Timestamp is a date and time without time zone.
type Timestamp struct{ notNullTag }

func (Timestamp) Kind() Kind { return KindTimestamp }

// UUID is a 128-bit universally unique identifier.
type UUID struct{ notNullTag }

func (UUID) Kind() Kind { return KindUUID }

// JSON is a JSON document stored as text.
type JSON struct{ notNullTag }

func (JSON) Kind() Kind { return KindJSON }

// Oid is a PostgreSQL object identifier.
type Oid struct{ notNullTag }

func (Oid) Kind() Kind { return KindOid }
