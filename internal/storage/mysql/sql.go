package mysql

// Placeholders are `?` throughout so the same text runs on MySQL and SQLite.

const chairColumns = "id, name, description, thumbnail, price, height, width, depth, color, features, kind, popularity, stock"

const estateColumns = "id, name, description, thumbnail, address, latitude, longitude, rent, door_height, door_width, features, popularity"

// Every listing read uses this order; id breaks popularity ties so pages never overlap.
const listingOrder = " ORDER BY popularity DESC, id ASC"

const (
	insertChairsPrefix  = "INSERT INTO chair (" + chairColumns + ") VALUES "
	insertEstatesPrefix = "INSERT INTO estate (" + estateColumns + ") VALUES "

	chairPlaceholders  = "(?,?,?,?,?,?,?,?,?,?,?,?,?)"
	estatePlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?)"
)

const (
	getChairSQL  = "SELECT " + chairColumns + " FROM chair WHERE id = ?"
	getEstateSQL = "SELECT " + estateColumns + " FROM estate WHERE id = ?"
)

// -----------------------------------------------------------------------------
// RESERVATION
// -----------------------------------------------------------------------------

// lockChairStockSQL gets " FOR UPDATE" appended on MySQL.
const lockChairStockSQL = "SELECT stock FROM chair WHERE id = ?"

// The stock guard repeats the locked check so a driver without row locks still never goes negative.
const decrementChairStockSQL = "UPDATE chair SET stock = stock - 1 WHERE id = ? AND stock > 0"

// -----------------------------------------------------------------------------
// FIXED LISTS
// -----------------------------------------------------------------------------

const lowPricedChairsSQL = `
SELECT ` + chairColumns + `
FROM chair
WHERE stock > 0
ORDER BY price ASC, id ASC
LIMIT ?`

const lowPricedEstatesSQL = `
SELECT ` + estateColumns + `
FROM estate
ORDER BY rent ASC, id ASC
LIMIT ?`

// Inclusive on all four sides.
const estatesInBoundingBoxSQL = `
SELECT ` + estateColumns + `
FROM estate
WHERE latitude <= ? AND latitude >= ? AND longitude <= ? AND longitude >= ?` + listingOrder

// One clause per (door_width, door_height) orientation of the item.
const estatesAdmittingSQL = `
SELECT ` + estateColumns + `
FROM estate
WHERE (door_width >= ? AND door_height >= ?)
   OR (door_width >= ? AND door_height >= ?)
   OR (door_width >= ? AND door_height >= ?)
   OR (door_width >= ? AND door_height >= ?)
   OR (door_width >= ? AND door_height >= ?)
   OR (door_width >= ? AND door_height >= ?)` + listingOrder + `
LIMIT ?`
